package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"

	"github.com/hchm/symphony/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errStorage = errors.New("storage unavailable")

// memFollowRepo is an in-memory FollowRepository for tests.
type memFollowRepo struct {
	edges  []models.Follow
	nextID uint
	fail   bool
}

func (m *memFollowRepo) CreateFollow(follow *models.Follow) error {
	if m.fail {
		return errStorage
	}
	for _, e := range m.edges {
		if e.FollowerID == follow.FollowerID && e.FollowingID == follow.FollowingID && e.FollowingType == follow.FollowingType {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	follow.ID = m.nextID
	m.edges = append(m.edges, *follow)
	return nil
}

func (m *memFollowRepo) DeleteFollow(followerID uint, followingID string, followingType models.FollowingType) error {
	if m.fail {
		return errStorage
	}
	for i, e := range m.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID && e.FollowingType == followingType {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memFollowRepo) Exists(followerID uint, followingID string, followingType models.FollowingType) (bool, error) {
	if m.fail {
		return false, errStorage
	}
	for _, e := range m.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID && e.FollowingType == followingType {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFollowRepo) GetFollowings(followerID uint, followingType models.FollowingType, page, pageSize int) ([]models.Follow, error) {
	if m.fail {
		return nil, errStorage
	}
	var matched []models.Follow
	for _, e := range m.edges {
		if e.FollowerID == followerID && e.FollowingType == followingType {
			matched = append(matched, e)
		}
	}
	return paginateDesc(matched, page, pageSize), nil
}

func (m *memFollowRepo) GetFollowers(followingID string, followingType models.FollowingType, page, pageSize int) ([]models.Follow, error) {
	if m.fail {
		return nil, errStorage
	}
	var matched []models.Follow
	for _, e := range m.edges {
		if e.FollowingID == followingID && e.FollowingType == followingType {
			matched = append(matched, e)
		}
	}
	return paginateDesc(matched, page, pageSize), nil
}

func (m *memFollowRepo) CountFollowers(followingID string, followingType models.FollowingType) (int64, error) {
	if m.fail {
		return 0, errStorage
	}
	var n int64
	for _, e := range m.edges {
		if e.FollowingID == followingID && e.FollowingType == followingType {
			n++
		}
	}
	return n, nil
}

func (m *memFollowRepo) CountFollowing(followerID uint, followingType models.FollowingType) (int64, error) {
	if m.fail {
		return 0, errStorage
	}
	var n int64
	for _, e := range m.edges {
		if e.FollowerID == followerID && e.FollowingType == followingType {
			n++
		}
	}
	return n, nil
}

func paginateDesc(edges []models.Follow, page, pageSize int) []models.Follow {
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID > edges[j].ID })
	start := (page - 1) * pageSize
	if start >= len(edges) {
		return nil
	}
	end := start + pageSize
	if end > len(edges) {
		end = len(edges)
	}
	return edges[start:end]
}

// memUserRepo is an in-memory UserRepository for tests.
type memUserRepo struct {
	users map[uint]models.User
	fail  bool
}

func (m *memUserRepo) CreateUser(user *models.User) error {
	if m.users == nil {
		m.users = make(map[uint]models.User)
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	if m.fail {
		return nil, errStorage
	}
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (m *memUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	for _, u := range m.users {
		if u.FirebaseUID == uid {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) UpdateUser(user *models.User) error { return m.CreateUser(user) }

func (m *memUserRepo) DeleteUser(id uint) error {
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) SearchUsers(string) ([]models.User, error) { return nil, nil }

// memCountCache is an in-memory FollowCountCache for tests.
type memCountCache struct {
	followers   map[string]int64
	following   map[string]int64
	invalidated []string
	fail        bool
}

func newMemCountCache() *memCountCache {
	return &memCountCache{followers: make(map[string]int64), following: make(map[string]int64)}
}

func (m *memCountCache) GetFollowerCount(_ context.Context, userID string) (int64, bool, error) {
	if m.fail {
		return 0, false, errStorage
	}
	n, ok := m.followers[userID]
	return n, ok, nil
}

func (m *memCountCache) SetFollowerCount(_ context.Context, userID string, count int64) error {
	if m.fail {
		return errStorage
	}
	m.followers[userID] = count
	return nil
}

func (m *memCountCache) GetFollowingCount(_ context.Context, userID string) (int64, bool, error) {
	if m.fail {
		return 0, false, errStorage
	}
	n, ok := m.following[userID]
	return n, ok, nil
}

func (m *memCountCache) SetFollowingCount(_ context.Context, userID string, count int64) error {
	if m.fail {
		return errStorage
	}
	m.following[userID] = count
	return nil
}

func (m *memCountCache) InvalidateFollowerCount(_ context.Context, userID string) error {
	delete(m.followers, userID)
	m.invalidated = append(m.invalidated, "followers:"+userID)
	return nil
}

func (m *memCountCache) InvalidateFollowingCount(_ context.Context, userID string) error {
	delete(m.following, userID)
	m.invalidated = append(m.invalidated, "following:"+userID)
	return nil
}

func seedUsers(repo *memUserRepo, ids ...uint) {
	for _, id := range ids {
		repo.CreateUser(&models.User{ID: id, Name: "user" + strconv.FormatUint(uint64(id), 10), Email: "u" + strconv.FormatUint(uint64(id), 10) + "@example.com"})
	}
}

func seedEdge(repo *memFollowRepo, id, follower uint, following string, t models.FollowingType) {
	repo.edges = append(repo.edges, models.Follow{ID: id, FollowerID: follower, FollowingID: following, FollowingType: t})
	if id > repo.nextID {
		repo.nextID = id
	}
}

func newQueryService(follows *memFollowRepo, users *memUserRepo) *FollowQueryService {
	return NewFollowQueryService(follows, users, nil, NewAvatarFiller(""), zap.NewNop())
}

func TestIsFollowing(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedEdge(follows, 1, 1, "2", models.FollowingTypeUser)

	svc := newQueryService(follows, users)

	if !svc.IsFollowing(1, "2", models.FollowingTypeUser) {
		t.Errorf("expected edge (1 -> 2, user) to exist")
	}
	if svc.IsFollowing(2, "1", models.FollowingTypeUser) {
		t.Errorf("reverse edge should not exist")
	}
	if svc.IsFollowing(1, "2", models.FollowingTypeTag) {
		t.Errorf("edge with different type should not exist")
	}
}

func TestIsFollowingFailsClosed(t *testing.T) {
	follows := &memFollowRepo{fail: true}
	seedEdge(follows, 1, 1, "2", models.FollowingTypeUser)

	svc := newQueryService(follows, &memUserRepo{})

	if svc.IsFollowing(1, "2", models.FollowingTypeUser) {
		t.Errorf("storage failure must yield false, never a false positive")
	}
}

func TestGetFollowingUsersOrderAndPagination(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 2, 3, 4, 5, 6)
	// Follow order: 2, 3, 4, 5, 6 (edge ids ascending)
	for i, target := range []string{"2", "3", "4", "5", "6"} {
		seedEdge(follows, uint(i+1), 1, target, models.FollowingTypeUser)
	}

	svc := newQueryService(follows, users)

	page1 := svc.GetFollowingUsers(1, 1, 2)
	if len(page1) != 2 || page1[0].ID != 6 || page1[1].ID != 5 {
		t.Fatalf("page 1 = %v, want users 6, 5 (most recently followed first)", ids(page1))
	}

	page2 := svc.GetFollowingUsers(1, 2, 2)
	if len(page2) != 2 || page2[0].ID != 4 || page2[1].ID != 3 {
		t.Fatalf("page 2 = %v, want users 4, 3", ids(page2))
	}

	page3 := svc.GetFollowingUsers(1, 3, 2)
	if len(page3) != 1 || page3[0].ID != 2 {
		t.Fatalf("page 3 = %v, want user 2", ids(page3))
	}
}

func TestGetFollowingUsersSkipsDeletedUser(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 2) // user 3 does not exist
	seedEdge(follows, 5, 1, "2", models.FollowingTypeUser)
	seedEdge(follows, 7, 1, "3", models.FollowingTypeUser)

	svc := newQueryService(follows, users)

	got := svc.GetFollowingUsers(1, 1, 10)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %v, want only user 2; deleted target must be silently dropped", ids(got))
	}
}

func TestGetFollowingUsersIgnoresNonUserEdges(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 2)
	seedEdge(follows, 1, 1, "2", models.FollowingTypeUser)
	seedEdge(follows, 2, 1, "golang", models.FollowingTypeTag)

	svc := newQueryService(follows, users)

	got := svc.GetFollowingUsers(1, 1, 10)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %v, want only user-typed edges resolved", ids(got))
	}
}

func TestGetFollowingUsersStorageFailureReturnsEmpty(t *testing.T) {
	follows := &memFollowRepo{fail: true}
	svc := newQueryService(follows, &memUserRepo{})

	got := svc.GetFollowingUsers(1, 1, 10)
	if len(got) != 0 {
		t.Fatalf("got %d users, want empty list on storage failure", len(got))
	}
}

func TestGetFollowerUsersMirrorsFollowing(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 1, 2)
	seedEdge(follows, 1, 1, "2", models.FollowingTypeUser)

	svc := newQueryService(follows, users)

	following := svc.GetFollowingUsers(1, 1, 10)
	followers := svc.GetFollowerUsers(2, 1, 10)

	if len(following) != 1 || following[0].ID != 2 {
		t.Fatalf("following of 1 = %v, want [2]", ids(following))
	}
	if len(followers) != 1 || followers[0].ID != 1 {
		t.Fatalf("followers of 2 = %v, want [1]", ids(followers))
	}
}

func TestReturnedUsersCarryThumbnails(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 2)
	seedEdge(follows, 1, 1, "2", models.FollowingTypeUser)

	svc := newQueryService(follows, users)

	got := svc.GetFollowingUsers(1, 1, 10)
	if len(got) != 1 {
		t.Fatalf("got %d users, want 1", len(got))
	}
	if got[0].AvatarURL == "" {
		t.Errorf("returned user missing thumbnail annotation")
	}
}

func TestGetFollowingTags(t *testing.T) {
	follows := &memFollowRepo{}
	seedEdge(follows, 1, 1, "golang", models.FollowingTypeTag)
	seedEdge(follows, 2, 1, "databases", models.FollowingTypeTag)

	svc := newQueryService(follows, &memUserRepo{})

	tags := svc.GetFollowingTags(1, 1, 10)
	if len(tags) != 2 || tags[0] != "databases" || tags[1] != "golang" {
		t.Fatalf("tags = %v, want [databases golang] (newest first)", tags)
	}
}

func TestCountFollowersUsesCache(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedEdge(follows, 1, 1, "3", models.FollowingTypeUser)
	seedEdge(follows, 2, 2, "3", models.FollowingTypeUser)

	counts := newMemCountCache()
	svc := NewFollowQueryService(follows, users, counts, NewAvatarFiller(""), zap.NewNop())
	ctx := context.Background()

	if got := svc.CountFollowers(ctx, 3); got != 2 {
		t.Fatalf("CountFollowers = %d, want 2", got)
	}
	if cached, ok := counts.followers["3"]; !ok || cached != 2 {
		t.Fatalf("cache not populated after miss, got %v", counts.followers)
	}

	// Served from cache even when the DB goes away.
	follows.fail = true
	if got := svc.CountFollowers(ctx, 3); got != 2 {
		t.Fatalf("CountFollowers after cache populate = %d, want 2", got)
	}
}

func TestCountFollowersCacheFailureFallsBack(t *testing.T) {
	follows := &memFollowRepo{}
	seedEdge(follows, 1, 1, "3", models.FollowingTypeUser)

	counts := newMemCountCache()
	counts.fail = true
	svc := NewFollowQueryService(follows, &memUserRepo{}, counts, NewAvatarFiller(""), zap.NewNop())

	if got := svc.CountFollowers(context.Background(), 3); got != 1 {
		t.Fatalf("CountFollowers = %d, want DB fallback value 1", got)
	}
}

func TestPageNormalization(t *testing.T) {
	follows := &memFollowRepo{}
	users := &memUserRepo{}
	seedUsers(users, 2)
	seedEdge(follows, 1, 1, "2", models.FollowingTypeUser)

	svc := newQueryService(follows, users)

	// Page 0 and negative sizes fall back to sane defaults rather than erroring.
	got := svc.GetFollowingUsers(1, 0, -5)
	if len(got) != 1 {
		t.Fatalf("got %d users with degenerate paging params, want 1", len(got))
	}
}

func ids(users []models.User) []uint {
	out := make([]uint, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
