package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/hchm/symphony/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrArticleNotFound is returned when no article matches the given id.
var ErrArticleNotFound = fmt.Errorf("article not found")

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticleByID(ctx context.Context, id string) (*models.Article, error)
	GetArticleByShareCode(ctx context.Context, code string) (*models.Article, error)
	GetArticlesByAuthorID(ctx context.Context, authorID uint, skip, limit int64) ([]models.Article, error)
	GetAllArticles(ctx context.Context, skip, limit int64) ([]models.Article, error)
	UpdateArticle(ctx context.Context, id string, article *models.Article) error
	DeleteArticle(ctx context.Context, id string) error
	SetShareCode(ctx context.Context, id, code string) error
	IncrementViewCount(ctx context.Context, id string) error
	IncrementCommentsCount(ctx context.Context, id string) error
	DecrementCommentsCount(ctx context.Context, id string) error
}

// MongoArticleRepository implements ArticleRepository for MongoDB
type MongoArticleRepository struct {
	collection *mongo.Collection
}

// NewMongoArticleRepository creates a new MongoArticleRepository
func NewMongoArticleRepository(db *mongo.Database) *MongoArticleRepository {
	return &MongoArticleRepository{collection: db.Collection("articles")}
}

// CreateArticle creates a new article in MongoDB
func (r *MongoArticleRepository) CreateArticle(ctx context.Context, article *models.Article) error {
	article.ID = primitive.NewObjectID()
	article.CreatedAt = time.Now()
	article.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, article)
	return err
}

// GetArticleByID retrieves an article by ID from MongoDB
func (r *MongoArticleRepository) GetArticleByID(ctx context.Context, id string) (*models.Article, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid article ID format: %w", err)
	}

	var article models.Article
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&article)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetArticleByShareCode retrieves an article by its share code
func (r *MongoArticleRepository) GetArticleByShareCode(ctx context.Context, code string) (*models.Article, error) {
	var article models.Article
	err := r.collection.FindOne(ctx, bson.M{"share_code": code}).Decode(&article)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetArticlesByAuthorID retrieves articles by a specific author, newest first
func (r *MongoArticleRepository) GetArticlesByAuthorID(ctx context.Context, authorID uint, skip, limit int64) ([]models.Article, error) {
	var articles []models.Article
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"author_id": authorID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// GetAllArticles retrieves all articles with pagination, newest first
func (r *MongoArticleRepository) GetAllArticles(ctx context.Context, skip, limit int64) ([]models.Article, error) {
	var articles []models.Article
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// UpdateArticle updates an existing article in MongoDB
func (r *MongoArticleRepository) UpdateArticle(ctx context.Context, id string, article *models.Article) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid article ID format: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"title":      article.Title,
		"content":    article.Content,
		"tags":       article.Tags,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// DeleteArticle deletes an article by ID from MongoDB
func (r *MongoArticleRepository) DeleteArticle(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid article ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// SetShareCode stores the share code on an article. Idempotent for the same code.
func (r *MongoArticleRepository) SetShareCode(ctx context.Context, id, code string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid article ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"share_code": code}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// IncrementViewCount increments the view count of an article
func (r *MongoArticleRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.adjustCounter(ctx, id, "view_count", 1)
}

// IncrementCommentsCount increments the comments count of an article
func (r *MongoArticleRepository) IncrementCommentsCount(ctx context.Context, id string) error {
	return r.adjustCounter(ctx, id, "comments_count", 1)
}

// DecrementCommentsCount decrements the comments count of an article
func (r *MongoArticleRepository) DecrementCommentsCount(ctx context.Context, id string) error {
	return r.adjustCounter(ctx, id, "comments_count", -1)
}

func (r *MongoArticleRepository) adjustCounter(ctx context.Context, id, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid article ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}
