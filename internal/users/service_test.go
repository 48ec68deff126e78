package users

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/userhub/internal/platform/httpx"
)

// mockRepository is an in-memory Repository with the store's unique-index
// guarantee on email.
type mockRepository struct {
	records map[uuid.UUID]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[uuid.UUID]*User)}
}

func (m *mockRepository) seed(name, email string, role Role, active bool, createdAt time.Time) *User {
	u := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  active,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	m.records[u.ID] = u
	return u
}

func (m *mockRepository) Create(ctx context.Context, user *User) error {
	for _, u := range m.records {
		if u.Email == user.Email {
			return httpx.ErrDuplicateEmail
		}
	}
	clone := *user
	m.records[user.ID] = &clone
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.records[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.records {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *mockRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	for _, u := range m.records {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) Update(ctx context.Context, user *User) error {
	if _, ok := m.records[user.ID]; !ok {
		return httpx.ErrNotFound
	}
	for _, u := range m.records {
		if u.Email == user.Email && u.ID != user.ID {
			return httpx.ErrDuplicateEmail
		}
	}
	clone := *user
	m.records[user.ID] = &clone
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]User, error) {
	matched := m.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if offset >= len(matched) {
		return []User{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *mockRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	return len(m.matching(filter)), nil
}

func (m *mockRepository) Stats(ctx context.Context, recentSince time.Time) (*Stats, error) {
	s := &Stats{}
	for _, u := range m.records {
		s.TotalUsers++
		if u.IsActive {
			s.ActiveUsers++
		}
		if u.Role == RoleAdmin {
			s.AdminUsers++
		}
		if !u.CreatedAt.Before(recentSince) {
			s.RecentUsers++
		}
	}
	s.InactiveUsers = s.TotalUsers - s.ActiveUsers
	return s, nil
}

func (m *mockRepository) matching(filter ListFilter) []User {
	matched := []User{}
	for _, u := range m.records {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, *u)
	}
	return matched
}

var _ Repository = (*mockRepository)(nil)

func TestListPagination(t *testing.T) {
	repo := newMockRepository()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		repo.seed("User", uuid.NewString()+"@x.com", RoleUser, true, base.Add(time.Duration(i)*time.Minute))
	}
	svc := NewService(repo)

	result, p, err := svc.List(context.Background(), ListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, result, 10)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.Pages)

	// Newest first.
	assert.True(t, result[0].CreatedAt.After(result[9].CreatedAt))

	result, p, err = svc.List(context.Background(), ListFilter{}, 3, 10)
	require.NoError(t, err)
	assert.Len(t, result, 5)
	assert.Equal(t, 3, p.Page)
}

func TestListPageBeyondRange(t *testing.T) {
	repo := newMockRepository()
	repo.seed("User", "a@x.com", RoleUser, true, time.Now())
	svc := NewService(repo)

	result, p, err := svc.List(context.Background(), ListFilter{}, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 1, p.Pages)
}

func TestListFilters(t *testing.T) {
	repo := newMockRepository()
	now := time.Now()
	repo.seed("Admin", "admin@x.com", RoleAdmin, true, now)
	repo.seed("Active", "active@x.com", RoleUser, true, now)
	repo.seed("Inactive", "inactive@x.com", RoleUser, false, now)
	svc := NewService(repo)

	role := RoleAdmin
	result, _, err := svc.List(context.Background(), ListFilter{Role: &role}, 1, 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "admin@x.com", result[0].Email)

	inactive := false
	result, _, err = svc.List(context.Background(), ListFilter{IsActive: &inactive}, 1, 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "inactive@x.com", result[0].Email)
}

func TestGet(t *testing.T) {
	repo := newMockRepository()
	seeded := repo.seed("User", "a@x.com", RoleUser, true, time.Now())
	svc := NewService(repo)

	user, err := svc.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, user.Email)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	repo := newMockRepository()
	seeded := repo.seed("User", "a@x.com", RoleUser, true, time.Now())
	svc := NewService(repo)

	role := RoleAdmin
	inactive := false
	user, err := svc.Update(context.Background(), seeded.ID, UpdateInput{Role: &role, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.False(t, user.IsActive)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestUpdateTrimsName(t *testing.T) {
	repo := newMockRepository()
	seeded := repo.seed("User", "a@x.com", RoleUser, true, time.Now())
	svc := NewService(repo)

	name := "  Renamed User  "
	user, err := svc.Update(context.Background(), seeded.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed User", user.Name)
}

func TestUpdateDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	repo.seed("A", "a@x.com", RoleUser, true, time.Now())
	seeded := repo.seed("B", "b@x.com", RoleUser, true, time.Now())
	svc := NewService(repo)

	email := "A@X.com"
	_, err := svc.Update(context.Background(), seeded.ID, UpdateInput{Email: &email})
	assert.ErrorIs(t, err, httpx.ErrDuplicateEmail)

	// State unchanged after the rejected update.
	unchanged, err := svc.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", unchanged.Email)
}

func TestUpdateMissingUser(t *testing.T) {
	svc := NewService(newMockRepository())

	name := "Ghost"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Name: &name})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteSelfGuard(t *testing.T) {
	repo := newMockRepository()
	admin := repo.seed("Admin", "admin@x.com", RoleAdmin, true, time.Now())
	other := repo.seed("Other", "other@x.com", RoleUser, true, time.Now())
	svc := NewService(repo)

	err := svc.Delete(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, httpx.ErrSelfDelete)
	_, err = svc.Get(context.Background(), admin.ID)
	assert.NoError(t, err, "record must survive a refused self-delete")

	require.NoError(t, svc.Delete(context.Background(), admin.ID, other.ID))
	_, err = svc.Get(context.Background(), other.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteMissingUser(t *testing.T) {
	repo := newMockRepository()
	admin := repo.seed("Admin", "admin@x.com", RoleAdmin, true, time.Now())
	svc := NewService(repo)

	err := svc.Delete(context.Background(), admin.ID, uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestStats(t *testing.T) {
	repo := newMockRepository()
	now := time.Now()
	repo.seed("Admin", "admin@x.com", RoleAdmin, true, now.Add(-time.Hour))
	repo.seed("Fresh", "fresh@x.com", RoleUser, true, now.Add(-3*24*time.Hour))
	repo.seed("Old", "old@x.com", RoleUser, true, now.Add(-30*24*time.Hour))
	repo.seed("Gone", "gone@x.com", RoleUser, false, now.Add(-10*24*time.Hour))
	svc := NewService(repo)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 3, stats.ActiveUsers)
	assert.Equal(t, 1, stats.InactiveUsers)
	assert.Equal(t, 1, stats.AdminUsers)
	assert.Equal(t, 2, stats.RecentUsers)
}
