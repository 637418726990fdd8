package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hchm/symphony/internal/models"
	"go.uber.org/zap"
)

// memNotificationRepo records created notifications.
type memNotificationRepo struct {
	created []models.Notification
}

func (m *memNotificationRepo) CreateNotification(n *models.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

func (m *memNotificationRepo) GetByRecipientID(uint, int, int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (m *memNotificationRepo) GetUnreadCount(uint) (int64, error) { return 0, nil }
func (m *memNotificationRepo) MarkAsRead(uint, uint) error        { return nil }
func (m *memNotificationRepo) MarkAllAsRead(uint) error           { return nil }

func newFollowService(follows *memFollowRepo, users *memUserRepo, notifs *memNotificationRepo, counts *memCountCache) *FollowService {
	if counts == nil {
		// A nil *memCountCache inside the interface would not compare equal to nil.
		return NewFollowService(follows, users, notifs, nil, zap.NewNop())
	}
	return NewFollowService(follows, users, notifs, counts, zap.NewNop())
}

func TestFollowCreatesEdgeAndNotification(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 1, 2)
	notifs := &memNotificationRepo{}

	svc := newFollowService(follows, users, notifs, nil)

	if err := svc.Follow(context.Background(), 1, "2", models.FollowingTypeUser); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	if len(follows.edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(follows.edges))
	}
	if len(notifs.created) != 1 {
		t.Fatalf("notification count = %d, want 1", len(notifs.created))
	}
	if notifs.created[0].Type != "follow" || notifs.created[0].RecipientID != 2 {
		t.Errorf("notification = %+v, want follow notification to user 2", notifs.created[0])
	}
}

func TestFollowRejectsSelf(t *testing.T) {
	svc := newFollowService(&memFollowRepo{}, &memUserRepo{}, &memNotificationRepo{}, nil)

	err := svc.Follow(context.Background(), 1, "1", models.FollowingTypeUser)
	if !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("err = %v, want ErrSelfFollow", err)
	}
}

func TestFollowRejectsDuplicate(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 1, 2)
	svc := newFollowService(follows, users, &memNotificationRepo{}, nil)
	ctx := context.Background()

	if err := svc.Follow(ctx, 1, "2", models.FollowingTypeUser); err != nil {
		t.Fatalf("first Follow: %v", err)
	}
	if err := svc.Follow(ctx, 1, "2", models.FollowingTypeUser); !errors.Is(err, ErrAlreadyFollowing) {
		t.Fatalf("second Follow err = %v, want ErrAlreadyFollowing", err)
	}
	if len(follows.edges) != 1 {
		t.Fatalf("edge count = %d, want 1 (no duplicate triple)", len(follows.edges))
	}
}

func TestFollowTagSkipsNotification(t *testing.T) {
	follows := &memFollowRepo{}
	notifs := &memNotificationRepo{}
	svc := newFollowService(follows, &memUserRepo{}, notifs, nil)

	if err := svc.Follow(context.Background(), 1, "golang", models.FollowingTypeTag); err != nil {
		t.Fatalf("Follow tag: %v", err)
	}
	if len(notifs.created) != 0 {
		t.Errorf("tag follow should not notify anyone, got %d notifications", len(notifs.created))
	}
}

func TestUnfollowRemovesEdge(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 1, 2)
	svc := newFollowService(follows, users, &memNotificationRepo{}, nil)
	ctx := context.Background()

	if err := svc.Follow(ctx, 1, "2", models.FollowingTypeUser); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := svc.Unfollow(ctx, 1, "2", models.FollowingTypeUser); err != nil {
		t.Fatalf("Unfollow: %v", err)
	}
	if len(follows.edges) != 0 {
		t.Fatalf("edge count = %d, want 0", len(follows.edges))
	}
}

func TestUnfollowMissingEdge(t *testing.T) {
	svc := newFollowService(&memFollowRepo{}, &memUserRepo{}, &memNotificationRepo{}, nil)

	err := svc.Unfollow(context.Background(), 1, "2", models.FollowingTypeUser)
	if !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("err = %v, want ErrNotFollowing", err)
	}
}

func TestFollowInvalidatesCachedCounts(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 1, 2)
	counts := newMemCountCache()
	counts.followers["2"] = 10
	counts.following["1"] = 5

	svc := newFollowService(follows, users, &memNotificationRepo{}, counts)

	if err := svc.Follow(context.Background(), 1, "2", models.FollowingTypeUser); err != nil {
		t.Fatalf("Follow: %v", err)
	}

	if _, ok := counts.followers["2"]; ok {
		t.Errorf("follower count for user 2 should be invalidated")
	}
	if _, ok := counts.following["1"]; ok {
		t.Errorf("following count for user 1 should be invalidated")
	}
}
