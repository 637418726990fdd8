package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/hchm/symphony/internal/cache"
	"github.com/hchm/symphony/internal/handlers"
	"github.com/hchm/symphony/internal/middleware"
	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/hchm/symphony/internal/services"
	"github.com/hchm/symphony/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil when AUTH_MODE is "jwt".
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client, logger *zap.Logger) {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Comment{},
		&models.Vote{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	voteRepo := repositories.NewPostgresVoteRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	articleRepo := repositories.NewMongoArticleRepository(articleDatabase(db.Mongo, cfg))

	// --- Initialize Services ---
	var counts cache.FollowCountCache
	if db.Redis != nil {
		counts = cache.NewRedisFollowCountCache(db.Redis)
		log.Println("Follow count cache enabled.")
	}
	filler := services.NewAvatarFiller(cfg.AvatarBaseURL)
	followQueries := services.NewFollowQueryService(followRepo, userRepo, counts, filler, logger)
	followService := services.NewFollowService(followRepo, userRepo, notificationRepo, counts, logger)

	articleHandler := handlers.NewArticleHandler(articleRepo, commentRepo, voteRepo, userRepo, followQueries, filler, cfg.ShareBaseURL, logger)

	// Shared article resolution is public
	e.GET("/s/:code", articleHandler.GetSharedArticle)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	switch cfg.AuthMode {
	case "firebase":
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
		log.Println("Firebase authentication middleware applied to /api/v1 group.")
	default:
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		log.Println("JWT authentication middleware applied to /api/v1 group.")
	}

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, filler)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followService, followQueries, userRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Article routes
	articleHandler.RegisterArticleRoutes(api)
	log.Println("Article routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, articleRepo, userRepo, notificationRepo, logger)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Vote routes
	voteHandler := handlers.NewVoteHandler(voteRepo, articleRepo, userRepo, notificationRepo)
	voteHandler.RegisterVoteRoutes(api)
	log.Println("Vote routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}

func articleDatabase(client *mongo.Client, cfg *config.Config) *mongo.Database {
	return client.Database(cfg.MongoDatabase)
}
