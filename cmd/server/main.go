package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/hchm/symphony/internal/router"
	"github.com/hchm/symphony/pkg/config"
	"github.com/hchm/symphony/pkg/firebase"
	"github.com/hchm/symphony/pkg/logger"
	"github.com/hchm/symphony/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logger for the service layer
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase only when it is the configured identity provider
	var authClient *auth.Client
	if cfg.AuthMode == "firebase" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db, authClient, zlog)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server. Exiting through a plain return keeps the deferred
	// connection closers and log flush running.
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Server stopped: %v\n", err)
	}
}
