package models

import "gorm.io/gorm"

// Vote directions.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote represents a user's up or down vote on an article. One row per
// (article, user); re-voting flips Direction in place.
type Vote struct {
	gorm.Model
	ArticleID string `json:"article_id" gorm:"index;uniqueIndex:idx_article_user_vote"` // MongoDB ObjectID hex
	UserID    uint   `json:"user_id" gorm:"index;uniqueIndex:idx_article_user_vote"`
	Direction int    `json:"direction"` // VoteUp or VoteDown
}

// VoteRequest defines the request body for voting on an article
type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}
