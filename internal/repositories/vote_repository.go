package repositories

import (
	"errors"

	"github.com/hchm/symphony/internal/models"
	"gorm.io/gorm"
)

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	UpsertVote(articleID string, userID uint, direction int) (*models.Vote, error)
	DeleteVote(articleID string, userID uint) error
	GetUserVote(articleID string, userID uint) (int, error)
	CountVotes(articleID string) (up int64, down int64, err error)
}

// PostgresVoteRepository implements VoteRepository for PostgreSQL
type PostgresVoteRepository struct {
	db *gorm.DB
}

// NewPostgresVoteRepository creates a new PostgresVoteRepository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// UpsertVote records the user's vote on an article, flipping the direction
// if a vote already exists.
func (r *PostgresVoteRepository) UpsertVote(articleID string, userID uint, direction int) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.Where("article_id = ? AND user_id = ?", articleID, userID).First(&vote).Error
	switch {
	case err == nil:
		if vote.Direction == direction {
			return &vote, nil
		}
		vote.Direction = direction
		if err := r.db.Save(&vote).Error; err != nil {
			return nil, err
		}
		return &vote, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote = models.Vote{ArticleID: articleID, UserID: userID, Direction: direction}
		if err := r.db.Create(&vote).Error; err != nil {
			return nil, err
		}
		return &vote, nil
	default:
		return nil, err
	}
}

func (r *PostgresVoteRepository) DeleteVote(articleID string, userID uint) error {
	res := r.db.Where("article_id = ? AND user_id = ?", articleID, userID).Delete(&models.Vote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetUserVote returns the user's vote direction on an article, or 0 when the
// user has not voted.
func (r *PostgresVoteRepository) GetUserVote(articleID string, userID uint) (int, error) {
	var vote models.Vote
	err := r.db.Where("article_id = ? AND user_id = ?", articleID, userID).First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return vote.Direction, nil
}

func (r *PostgresVoteRepository) CountVotes(articleID string) (int64, int64, error) {
	var up, down int64
	if err := r.db.Model(&models.Vote{}).
		Where("article_id = ? AND direction = ?", articleID, models.VoteUp).
		Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.Model(&models.Vote{}).
		Where("article_id = ? AND direction = ?", articleID, models.VoteDown).
		Count(&down).Error; err != nil {
		return 0, 0, err
	}
	return up, down, nil
}
