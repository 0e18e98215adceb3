// Package repository provides persistence for the auth bounded context.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is the account row as stored. PasswordHash is nil for social-only
// accounts.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash *string
	Name         string
	Role         string
	IsActive     bool
	IsVerified   bool
	Bio          *string
	Avatar       *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EnrollmentSummary is a compact view of a user's enrollment for the
// current-user endpoint.
type EnrollmentSummary struct {
	CourseID    uuid.UUID `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	CourseSlug  string    `json:"courseSlug"`
	Progress    float64   `json:"progress"`
	Status      string    `json:"status"`
	EnrolledAt  time.Time `json:"enrolledAt"`
}

const userColumns = `id, email, password_hash, name, role, is_active, is_verified,
	bio, avatar, last_login_at, created_at, updated_at`

// Repository provides access to user rows for authentication flows.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser inserts a new account. A duplicate email surfaces as Conflict
// regardless of whether the pre-check saw it first.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, name, role string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		uuid.New(), email, passwordHash, name, role,
	)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetByID fetches a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// EmailExists reports whether an account with the email already exists.
// Fast-path check only; the unique constraint is the backstop.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// MarkVerified flips the account's verified flag. Verifying an already
// verified account is a no-op that still succeeds.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_verified = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// RecentEnrollments returns the user's newest enrollments with course
// summaries, for the current-user endpoint.
func (r *Repository) RecentEnrollments(ctx context.Context, userID uuid.UUID, limit int) ([]EnrollmentSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.course_id, c.title, c.slug, e.progress, e.status, e.enrolled_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent enrollments: %w", err)
	}
	defer rows.Close()

	var results []EnrollmentSummary
	for rows.Next() {
		var e EnrollmentSummary
		if err := rows.Scan(&e.CourseID, &e.CourseTitle, &e.CourseSlug, &e.Progress, &e.Status, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan enrollment summary: %w", err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// EnrollmentCounts returns total and completed enrollment counts for a user.
func (r *Repository) EnrollmentCounts(ctx context.Context, userID uuid.UUID) (total, completed int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'COMPLETED')
		FROM enrollments WHERE user_id = $1`,
		userID).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("enrollment counts: %w", err)
	}
	return total, completed, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive,
		&u.IsVerified, &u.Bio, &u.Avatar, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
