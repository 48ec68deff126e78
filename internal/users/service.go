package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
)

// recentWindow is the trailing period counted as "recent" in stats.
const recentWindow = 7 * 24 * time.Hour

// Service handles administrative user management.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpdateInput carries the admin-mutable fields. Nil fields are left unchanged.
type UpdateInput struct {
	Name     *string
	Email    *string
	Role     *Role
	IsActive *bool
}

// List returns one page of users matching the filter, newest first. Pages
// beyond the end yield an empty slice.
func (s *Service) List(ctx context.Context, filter ListFilter, page, limit int) ([]User, shared.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("counting users: %w", err)
	}

	p := shared.NewPagination(page, limit, total)
	result, err := s.repo.List(ctx, filter, p.Limit, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("listing users: %w", err)
	}
	return result, p, nil
}

// Get fetches a single user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies an administrative patch to a user record. Email changes are
// re-checked for uniqueness excluding the target record itself.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := shared.NormalizeEmail(*input.Email)
		if email != user.Email {
			taken, err := s.repo.EmailTaken(ctx, email, id)
			if err != nil {
				return nil, fmt.Errorf("checking email: %w", err)
			}
			if taken {
				return nil, httpx.ErrDuplicateEmail
			}
		}
		user.Email = email
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user permanently. The guard compares canonical record IDs
// so the caller can never delete the account behind their own session, no
// matter their role.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if actorID == id {
		return httpx.ErrSelfDelete
	}
	return s.repo.Delete(ctx, id)
}

// Stats aggregates account counts. The recent-user window is anchored to the
// moment of the call.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx, time.Now().Add(-recentWindow))
}
