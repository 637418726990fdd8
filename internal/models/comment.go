package models

import "gorm.io/gorm"

// Comment represents a comment on an article
type Comment struct {
	gorm.Model
	ArticleID string `json:"article_id" gorm:"index"` // MongoDB ObjectID hex of the article
	UserID    uint   `json:"user_id" gorm:"index"`
	Content   string `json:"content" validate:"required,min=1,max=2000"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
