// Package auth owns credential verification, token lifecycle, and the
// register/login/profile flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/userhub/userhub/internal/platform/httpx"
	"github.com/userhub/userhub/internal/shared"
	"github.com/userhub/userhub/internal/users"
)

// Service wraps the authentication business rules.
type Service struct {
	repo   users.Repository
	hasher Hasher
	tokens *TokenService
}

// NewService constructs a new Service.
func NewService(repo users.Repository, hasher Hasher, tokens *TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// RegisterInput carries the registration fields, already validated at the
// handler boundary.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput carries the self-mutable fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  *users.User
}

// Register creates a new account with the default role and issues a token.
// The uniqueness pre-check and the store's unique index both surface as
// httpx.ErrDuplicateEmail; a concurrent registration losing the race is
// indistinguishable from failing the pre-check.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := shared.NormalizeEmail(input.Email)

	taken, err := s.repo.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return nil, httpx.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &users.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         users.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password yield the same error so callers cannot probe which one failed;
// a deactivated account is reported distinctly.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, shared.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		return nil, httpx.ErrDeactivated
	}
	if !s.hasher.Check(input.Password, user.PasswordHash) {
		return nil, httpx.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Profile returns the caller's own record.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*users.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies a patch to the caller's own name and email, re-checking
// email uniqueness excluding the caller's record.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := shared.NormalizeEmail(*input.Email)
		if email != user.Email {
			taken, err := s.repo.EmailTaken(ctx, email, userID)
			if err != nil {
				return nil, fmt.Errorf("checking email: %w", err)
			}
			if taken {
				return nil, httpx.ErrDuplicateEmail
			}
		}
		user.Email = email
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
