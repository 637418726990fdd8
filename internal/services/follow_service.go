package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/hchm/symphony/internal/cache"
	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)

// FollowService owns the follow edge lifecycle: it creates and deletes
// edges, writes follow notifications, and keeps cached counts honest.
// Unlike the query service, mutations surface their errors to the caller.
type FollowService struct {
	follows       repositories.FollowRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	counts        cache.FollowCountCache // optional, may be nil
	logger        *zap.Logger
}

// NewFollowService creates a new FollowService.
func NewFollowService(
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
	counts cache.FollowCountCache,
	logger *zap.Logger,
) *FollowService {
	return &FollowService{
		follows:       follows,
		users:         users,
		notifications: notifications,
		counts:        counts,
		logger:        logger,
	}
}

// Follow creates a follow edge from followerID to the given target.
func (s *FollowService) Follow(ctx context.Context, followerID uint, followingID string, followingType models.FollowingType) error {
	if followingType == models.FollowingTypeUser && followingID == strconv.FormatUint(uint64(followerID), 10) {
		return ErrSelfFollow
	}

	exists, err := s.follows.Exists(followerID, followingID, followingType)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}

	follow := &models.Follow{
		FollowerID:    followerID,
		FollowingID:   followingID,
		FollowingType: followingType,
	}
	if err := s.follows.CreateFollow(follow); err != nil {
		// Concurrent double-follow lands on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyFollowing
		}
		return err
	}

	if followingType == models.FollowingTypeUser {
		s.notifyFollowed(followerID, followingID)
		s.invalidateCounts(ctx, followerID, followingID)
	}

	return nil
}

// Unfollow deletes the follow edge for the given triple. Returns
// ErrNotFollowing when no such edge exists.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, followingID string, followingType models.FollowingType) error {
	if err := s.follows.DeleteFollow(followerID, followingID, followingType); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFollowing
		}
		return err
	}

	if followingType == models.FollowingTypeUser {
		s.invalidateCounts(ctx, followerID, followingID)
	}
	return nil
}

// notifyFollowed writes a "started following you" notification. Best-effort:
// a failed notification never fails the follow.
func (s *FollowService) notifyFollowed(followerID uint, followingID string) {
	recipientID, err := strconv.ParseUint(followingID, 10, 32)
	if err != nil {
		return
	}

	actor, err := s.users.GetUserByID(followerID)
	if err != nil {
		s.logger.Warn("skip follow notification, actor lookup failed",
			zap.Uint("follower_id", followerID), zap.Error(err))
		return
	}

	notification := &models.Notification{
		Type:        "follow",
		ActorID:     followerID,
		RecipientID: uint(recipientID),
		TargetID:    followingID,
		TargetType:  "user",
		Message:     actor.Name + " started following you",
	}
	if err := s.notifications.CreateNotification(notification); err != nil {
		s.logger.Warn("create follow notification failed",
			zap.Uint("recipient_id", uint(recipientID)), zap.Error(err))
	}
}

func (s *FollowService) invalidateCounts(ctx context.Context, followerID uint, followingID string) {
	if s.counts == nil {
		return
	}
	if err := s.counts.InvalidateFollowerCount(ctx, followingID); err != nil {
		s.logger.Warn("invalidate follower count failed", zap.String("user_id", followingID), zap.Error(err))
	}
	followerKey := strconv.FormatUint(uint64(followerID), 10)
	if err := s.counts.InvalidateFollowingCount(ctx, followerKey); err != nil {
		s.logger.Warn("invalidate following count failed", zap.String("user_id", followerKey), zap.Error(err))
	}
}
