// Package repository provides persistence for the users bounded context.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learnhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userNotFoundMessage = "User not found"

const userColumns = `
	id, email, name, role, is_active, is_verified, bio, avatar,
	last_login_at, created_at, updated_at`

// User is the account row as the users module sees it, without credentials.
type User struct {
	ID          uuid.UUID
	Email       string
	Name        string
	Role        string
	IsActive    bool
	IsVerified  bool
	Bio         *string
	Avatar      *string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListUsersParams are the filter and paging inputs for the admin listing.
type ListUsersParams struct {
	Role     string
	Search   string
	IsActive *bool
	Limit    int
	Offset   int
}

// UpdateProfileParams are the self-service profile patch inputs; nil fields
// are left unchanged.
type UpdateProfileParams struct {
	Name   *string
	Bio    *string
	Avatar *string
}

// InstructorStats is the aggregate view over an instructor's courses.
type InstructorStats struct {
	TotalCourses  int64
	TotalStudents int64
	TotalReviews  int64
	AverageRating float64
}

// Repo implements the users repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new users repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID fetches a user.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// List returns filtered, paginated users plus the total count, newest first.
func (r *Repo) List(ctx context.Context, params ListUsersParams) ([]User, int64, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Role != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *params.IsActive)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

// UpdateProfile patches the user's own editable fields.
func (r *Repo) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			bio = COALESCE($3, bio),
			avatar = COALESCE($4, avatar),
			updated_at = now()
		WHERE id = $1`,
		id, params.Name, params.Bio, params.Avatar)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound(userNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}

// ChangeRole sets the user's role.
func (r *Repo) ChangeRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound(userNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}

// SetActive toggles the account's active flag.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, isActive bool) (*User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, isActive)
	if err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound(userNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}

// CourseCount returns how many courses the instructor owns.
func (r *Repo) CourseCount(ctx context.Context, instructorID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM courses WHERE instructor_id = $1`, instructorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("instructor course count: %w", err)
	}
	return count, nil
}

// StudentCount returns how many distinct users are enrolled across the
// instructor's courses.
func (r *Repo) StudentCount(ctx context.Context, instructorID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT e.user_id)
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE c.instructor_id = $1`, instructorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("instructor student count: %w", err)
	}
	return count, nil
}

// ReviewStats returns the mean rating and review count across the
// instructor's courses, zero average when there are no reviews.
func (r *Repo) ReviewStats(ctx context.Context, instructorID uuid.UUID) (avg float64, count int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(r.rating), 0), COUNT(r.id)
		FROM reviews r
		JOIN courses c ON c.id = r.course_id
		WHERE c.instructor_id = $1`, instructorID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("instructor review stats: %w", err)
	}
	return avg, count, nil
}

func scanUser(row pgx.Row) (*User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(userNotFoundMessage)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func scanUserRow(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.IsVerified,
		&u.Bio, &u.Avatar, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
