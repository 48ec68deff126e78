package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/platform/httpx"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations. A concurrent registration can pass the pre-check and still hit
// the unique index on email; both paths must surface the same error.
const pgUniqueViolation = "23505"

// Repository defines persistence operations over the user collection.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]User, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Stats(ctx context.Context, recentSince time.Time) (*Stats, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at"

// Create persists a new user record.
func (r *PGRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return httpx.ErrDuplicateEmail
	}
	return err
}

// GetByID fetches a user by primary key.
func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// GetByEmail fetches a user by email. Callers pass normalized (lowercased)
// addresses.
func (r *PGRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

// EmailTaken reports whether another record already holds the email.
func (r *PGRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	const query = "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)"
	var taken bool
	if err := r.pool.QueryRow(ctx, query, email, excludeID).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// Update rewrites the mutable columns of an existing record.
func (r *PGRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, role = $4, is_active = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Role, user.IsActive, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return httpx.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes a record permanently.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// List returns a page of users, newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]User, error) {
	where, args := filterClause(filter)
	query := fmt.Sprintf(
		"SELECT "+userColumns+" FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// Count returns the number of users matching the filter.
func (r *PGRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Stats aggregates account counts in a single query.
func (r *PGRepository) Stats(ctx context.Context, recentSince time.Time) (*Stats, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE role = 'admin'),
		       COUNT(*) FILTER (WHERE created_at >= $1)
		FROM users`

	var s Stats
	if err := r.pool.QueryRow(ctx, query, recentSince).Scan(&s.TotalUsers, &s.ActiveUsers, &s.AdminUsers, &s.RecentUsers); err != nil {
		return nil, err
	}
	s.InactiveUsers = s.TotalUsers - s.ActiveUsers
	return &s, nil
}

func (r *PGRepository) scanUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func filterClause(filter ListFilter) (string, []any) {
	where := ""
	args := []any{}
	add := func(cond string, arg any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, arg)
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.Role != nil {
		add("role = $%d", *filter.Role)
	}
	if filter.IsActive != nil {
		add("is_active = $%d", *filter.IsActive)
	}
	return where, args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var _ Repository = (*PGRepository)(nil)
