package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	followerCountKeyPrefix  = "follow:followers:"
	followingCountKeyPrefix = "follow:following:"

	countTTL = 10 * time.Minute
)

// FollowCountCache defines Redis operations for follower/following count
// caching. Get lookups report (count, found, err): a miss is not an error.
type FollowCountCache interface {
	GetFollowerCount(ctx context.Context, userID string) (int64, bool, error)
	SetFollowerCount(ctx context.Context, userID string, count int64) error
	GetFollowingCount(ctx context.Context, userID string) (int64, bool, error)
	SetFollowingCount(ctx context.Context, userID string, count int64) error
	InvalidateFollowerCount(ctx context.Context, userID string) error
	InvalidateFollowingCount(ctx context.Context, userID string) error
}

// RedisFollowCountCache implements FollowCountCache backed by Redis.
type RedisFollowCountCache struct {
	client *redis.Client
}

// NewRedisFollowCountCache creates a new Redis-backed follow count cache.
func NewRedisFollowCountCache(client *redis.Client) *RedisFollowCountCache {
	return &RedisFollowCountCache{client: client}
}

func (c *RedisFollowCountCache) GetFollowerCount(ctx context.Context, userID string) (int64, bool, error) {
	return c.get(ctx, followerCountKeyPrefix+userID)
}

func (c *RedisFollowCountCache) SetFollowerCount(ctx context.Context, userID string, count int64) error {
	return c.set(ctx, followerCountKeyPrefix+userID, count)
}

func (c *RedisFollowCountCache) GetFollowingCount(ctx context.Context, userID string) (int64, bool, error) {
	return c.get(ctx, followingCountKeyPrefix+userID)
}

func (c *RedisFollowCountCache) SetFollowingCount(ctx context.Context, userID string, count int64) error {
	return c.set(ctx, followingCountKeyPrefix+userID, count)
}

func (c *RedisFollowCountCache) InvalidateFollowerCount(ctx context.Context, userID string) error {
	return c.client.Del(ctx, followerCountKeyPrefix+userID).Err()
}

func (c *RedisFollowCountCache) InvalidateFollowingCount(ctx context.Context, userID string) error {
	return c.client.Del(ctx, followingCountKeyPrefix+userID).Err()
}

func (c *RedisFollowCountCache) get(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached count: %w", err)
	}
	return count, true, nil
}

func (c *RedisFollowCountCache) set(ctx context.Context, key string, count int64) error {
	if err := c.client.Set(ctx, key, count, countTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ensure interface is satisfied at compile time.
var _ FollowCountCache = (*RedisFollowCountCache)(nil)
