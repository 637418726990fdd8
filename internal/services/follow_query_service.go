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

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FollowQueryService resolves follow edges into hydrated user lists. It is
// the read path of the follow graph: storage failures are logged and
// degraded to empty/false results, never propagated, so a failing edge store
// can not take a page down with it. Stateless and safe for concurrent use.
type FollowQueryService struct {
	follows repositories.FollowRepository
	users   repositories.UserRepository
	counts  cache.FollowCountCache // optional, may be nil
	filler  UserAnnotator
	logger  *zap.Logger
}

// NewFollowQueryService creates a new FollowQueryService. counts may be nil
// to disable count caching.
func NewFollowQueryService(
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	counts cache.FollowCountCache,
	filler UserAnnotator,
	logger *zap.Logger,
) *FollowQueryService {
	return &FollowQueryService{
		follows: follows,
		users:   users,
		counts:  counts,
		filler:  filler,
		logger:  logger,
	}
}

// IsFollowing reports whether a follow edge exists for the given triple.
// On storage failure it logs and returns false: a false negative is
// acceptable here, a false positive never is.
func (s *FollowQueryService) IsFollowing(followerID uint, followingID string, followingType models.FollowingType) bool {
	exists, err := s.follows.Exists(followerID, followingID, followingType)
	if err != nil {
		s.logger.Error("determine following failed",
			zap.Uint("follower_id", followerID),
			zap.String("following_id", followingID),
			zap.Stringer("following_type", followingType),
			zap.Error(err))
		return false
	}
	return exists
}

// GetFollowingUsers returns the users the given follower follows, most
// recently followed first. Pages are 1-based; at most pageSize users are
// returned. Edges whose target user no longer exists are skipped, so the
// page may come back short. Every returned user carries a thumbnail URL.
func (s *FollowQueryService) GetFollowingUsers(followerID uint, page, pageSize int) []models.User {
	page, pageSize = normalizePage(page, pageSize)

	ret := make([]models.User, 0, pageSize)

	follows, err := s.follows.GetFollowings(followerID, models.FollowingTypeUser, page, pageSize)
	if err != nil {
		s.logger.Error("get following users failed",
			zap.Uint("follower_id", followerID),
			zap.Int("page", page),
			zap.Error(err))
		return ret
	}

	for _, follow := range follows {
		user, ok := s.resolveUser(follow.FollowingID)
		if user == nil {
			if !ok {
				// User store failure; keep what we already resolved.
				return ret
			}
			continue
		}
		s.filler.FillThumbnailURL(user)
		ret = append(ret, *user)
	}

	return ret
}

// GetFollowerUsers returns the users following the given user, most recent
// first. Same ordering, pagination, skip and annotation rules as
// GetFollowingUsers under edge-direction swap.
func (s *FollowQueryService) GetFollowerUsers(followingUserID uint, page, pageSize int) []models.User {
	page, pageSize = normalizePage(page, pageSize)

	ret := make([]models.User, 0, pageSize)

	followingID := strconv.FormatUint(uint64(followingUserID), 10)
	follows, err := s.follows.GetFollowers(followingID, models.FollowingTypeUser, page, pageSize)
	if err != nil {
		s.logger.Error("get follower users failed",
			zap.Uint("following_user_id", followingUserID),
			zap.Int("page", page),
			zap.Error(err))
		return ret
	}

	for _, follow := range follows {
		user, ok := s.resolveUser(strconv.FormatUint(uint64(follow.FollowerID), 10))
		if user == nil {
			if !ok {
				return ret
			}
			continue
		}
		s.filler.FillThumbnailURL(user)
		ret = append(ret, *user)
	}

	return ret
}

// GetFollowingTags returns the tag names the follower follows, most recently
// followed first.
func (s *FollowQueryService) GetFollowingTags(followerID uint, page, pageSize int) []string {
	page, pageSize = normalizePage(page, pageSize)

	follows, err := s.follows.GetFollowings(followerID, models.FollowingTypeTag, page, pageSize)
	if err != nil {
		s.logger.Error("get following tags failed",
			zap.Uint("follower_id", followerID),
			zap.Int("page", page),
			zap.Error(err))
		return []string{}
	}

	tags := make([]string, 0, len(follows))
	for _, follow := range follows {
		tags = append(tags, follow.FollowingID)
	}
	return tags
}

// CountFollowers returns the number of followers of a user, Redis-first with
// DB fallback. Both failing degrades to zero under the same fail-open read
// policy as the list queries.
func (s *FollowQueryService) CountFollowers(ctx context.Context, userID uint) int64 {
	id := strconv.FormatUint(uint64(userID), 10)

	if s.counts != nil {
		count, found, err := s.counts.GetFollowerCount(ctx, id)
		if err != nil {
			s.logger.Warn("follower count cache lookup failed, falling back to db",
				zap.String("user_id", id), zap.Error(err))
		}
		if found {
			return count
		}
	}

	count, err := s.follows.CountFollowers(id, models.FollowingTypeUser)
	if err != nil {
		s.logger.Error("count followers failed", zap.String("user_id", id), zap.Error(err))
		return 0
	}

	if s.counts != nil {
		if err := s.counts.SetFollowerCount(ctx, id, count); err != nil {
			s.logger.Warn("follower count cache store failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return count
}

// CountFollowing returns the number of users a follower follows, Redis-first
// with DB fallback.
func (s *FollowQueryService) CountFollowing(ctx context.Context, userID uint) int64 {
	id := strconv.FormatUint(uint64(userID), 10)

	if s.counts != nil {
		count, found, err := s.counts.GetFollowingCount(ctx, id)
		if err != nil {
			s.logger.Warn("following count cache lookup failed, falling back to db",
				zap.String("user_id", id), zap.Error(err))
		}
		if found {
			return count
		}
	}

	count, err := s.follows.CountFollowing(userID, models.FollowingTypeUser)
	if err != nil {
		s.logger.Error("count following failed", zap.String("user_id", id), zap.Error(err))
		return 0
	}

	if s.counts != nil {
		if err := s.counts.SetFollowingCount(ctx, id, count); err != nil {
			s.logger.Warn("following count cache store failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return count
}

// resolveUser fetches the user behind an edge target. It returns (nil, true)
// when the target is missing or unparsable (skip the edge, not an error) and
// (nil, false) on a storage failure.
func (s *FollowQueryService) resolveUser(id string) (*models.User, bool) {
	userID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		s.logger.Warn("edge target is not a user id", zap.String("target_id", id))
		return nil, true
	}

	user, err := s.users.GetUserByID(uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("user behind follow edge not found", zap.String("user_id", id))
			return nil, true
		}
		s.logger.Error("resolve user failed", zap.String("user_id", id), zap.Error(err))
		return nil, false
	}
	return user, true
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
