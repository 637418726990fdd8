package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article represents a forum article stored in MongoDB
type Article struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID      uint               `json:"author_id" bson:"author_id"`
	Title         string             `json:"title" bson:"title"`
	Content       string             `json:"content" bson:"content"`
	Tags          []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	ViewCount     int                `json:"view_count" bson:"view_count"`
	ShareCode     string             `json:"share_code,omitempty" bson:"share_code,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateArticleRequest defines the request body for creating a new article
type CreateArticleRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=128"`
	Content string   `json:"content" validate:"required,min=1,max=20000"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// UpdateArticleRequest defines the request body for updating an existing article
type UpdateArticleRequest struct {
	Title   string   `json:"title,omitempty" validate:"omitempty,min=1,max=128"`
	Content string   `json:"content,omitempty" validate:"omitempty,min=1,max=20000"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// ArticlePage is the assembled article detail view: the article itself plus
// the display state the client needs to render it (comments, vote tallies,
// the viewer's own vote, and whether the viewer follows the author).
type ArticlePage struct {
	Article         *Article  `json:"article"`
	Author          *User     `json:"author,omitempty"`
	Comments        []Comment `json:"comments"`
	UpVotes         int64     `json:"up_votes"`
	DownVotes       int64     `json:"down_votes"`
	ViewerVote      int       `json:"viewer_vote"` // VoteUp, VoteDown or 0
	FollowingAuthor bool      `json:"following_author"`
}
