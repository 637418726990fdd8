package models

import "time"

// FollowingType discriminates the kind of entity a follow edge points at.
type FollowingType int

const (
	FollowingTypeUser FollowingType = iota
	FollowingTypeTag
	FollowingTypeArticle
)

// String returns the wire name used in routes and JSON payloads.
func (t FollowingType) String() string {
	switch t {
	case FollowingTypeUser:
		return "user"
	case FollowingTypeTag:
		return "tag"
	case FollowingTypeArticle:
		return "article"
	default:
		return "unknown"
	}
}

// ParseFollowingType maps a route segment to a FollowingType.
func ParseFollowingType(s string) (FollowingType, bool) {
	switch s {
	case "user":
		return FollowingTypeUser, true
	case "tag":
		return FollowingTypeTag, true
	case "article":
		return FollowingTypeArticle, true
	default:
		return 0, false
	}
}

// Follow represents a directed follow edge from a user to a followable
// entity. FollowingID is a string because the target may be a user id, a tag
// name, or an article ObjectID hex. Edges are immutable; unfollow deletes
// the row. Descending ID order is reverse creation order.
type Follow struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	FollowerID    uint          `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following_type"`
	FollowingID   string        `json:"following_id" gorm:"size:64;index;uniqueIndex:idx_follower_following_type"`
	FollowingType FollowingType `json:"following_type" gorm:"index;uniqueIndex:idx_follower_following_type"`
	CreatedAt     time.Time     `json:"created_at"`
}
