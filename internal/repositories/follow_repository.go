package repositories

import (
	"github.com/hchm/symphony/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edge data operations.
// List queries are ordered by edge id descending (most recently followed
// first) and paginated with 1-based page numbers.
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID uint, followingID string, followingType models.FollowingType) error
	Exists(followerID uint, followingID string, followingType models.FollowingType) (bool, error)
	GetFollowings(followerID uint, followingType models.FollowingType, page, pageSize int) ([]models.Follow, error)
	GetFollowers(followingID string, followingType models.FollowingType, page, pageSize int) ([]models.Follow, error)
	CountFollowers(followingID string, followingType models.FollowingType) (int64, error)
	CountFollowing(followerID uint, followingType models.FollowingType) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(followerID uint, followingID string, followingType models.FollowingType) error {
	res := r.db.
		Where("follower_id = ? AND following_id = ? AND following_type = ?", followerID, followingID, followingType).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) Exists(followerID uint, followingID string, followingType models.FollowingType) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND following_type = ?", followerID, followingID, followingType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowings returns the edges going out of followerID, newest first.
func (r *PostgresFollowRepository) GetFollowings(followerID uint, followingType models.FollowingType, page, pageSize int) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.
		Where("follower_id = ? AND following_type = ?", followerID, followingType).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&follows).Error
	return follows, err
}

// GetFollowers returns the edges pointing at followingID, newest first.
func (r *PostgresFollowRepository) GetFollowers(followingID string, followingType models.FollowingType, page, pageSize int) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.
		Where("following_id = ? AND following_type = ?", followingID, followingType).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&follows).Error
	return follows, err
}

func (r *PostgresFollowRepository) CountFollowers(followingID string, followingType models.FollowingType) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("following_id = ? AND following_type = ?", followingID, followingType).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) CountFollowing(followerID uint, followingType models.FollowingType) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_type = ?", followerID, followingType).
		Count(&count).Error
	return count, err
}
