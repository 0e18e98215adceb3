// Package repository provides persistence for the enrollments bounded
// context.
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

const (
	courseNotFoundMessage  = "Course not found"
	alreadyEnrolledMessage = "You are already enrolled in this course"
	notEnrolledMessage     = "You are not enrolled in this course"
	enrollmentStatusActive = "ACTIVE"
	coursePublishedStatus  = "PUBLISHED"
)

// Enrollment is an enrollment row.
type Enrollment struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CourseID    uuid.UUID
	Status      string
	Progress    float64
	EnrolledAt  time.Time
	CompletedAt *time.Time
}

// EnrolledCourse is an enrollment with its course summary, as shown on the
// my-courses listing.
type EnrolledCourse struct {
	Enrollment
	CourseTitle    string
	CourseSlug     string
	Thumbnail      *string
	Level          string
	InstructorName string
	TotalLessons   int
	Duration       int
}

// LessonProgress is a lesson with the user's completion state.
type LessonProgress struct {
	ID            uuid.UUID
	Title         string
	Type          string
	VideoDuration int
	IsFree        bool
	Order         int
	Completed     bool
	CompletedAt   *time.Time
}

// SectionProgress is a section with its lessons and the user's progress.
type SectionProgress struct {
	ID      uuid.UUID
	Title   string
	Order   int
	Lessons []LessonProgress
}

// Detail is the full enrollment view: the enrollment, its course summary,
// and the curriculum with per-lesson completion.
type Detail struct {
	Enrollment EnrolledCourse
	Sections   []SectionProgress
}

// Repo implements the enrollments repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new enrollments repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Enroll inserts an ACTIVE enrollment for the user. The course must exist
// and be published; unpublished courses look absent to students. Returns the
// enrollment and the course title for the enrollment event.
func (r *Repo) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*Enrollment, string, error) {
	var title, status string
	err := r.pool.QueryRow(ctx,
		`SELECT title, status FROM courses WHERE id = $1`, courseID).Scan(&title, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperr.NotFound(courseNotFoundMessage)
		}
		return nil, "", fmt.Errorf("get course for enrollment: %w", err)
	}
	if status != coursePublishedStatus {
		return nil, "", apperr.NotFound(courseNotFoundMessage)
	}

	// Pre-check gives a clean message; the unique constraint stays
	// authoritative under concurrent requests.
	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	if err != nil {
		return nil, "", fmt.Errorf("check enrollment: %w", err)
	}
	if exists {
		return nil, "", apperr.Conflict(alreadyEnrolledMessage)
	}

	var e Enrollment
	err = r.pool.QueryRow(ctx, `
		INSERT INTO enrollments (id, user_id, course_id, status, progress)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, user_id, course_id, status, progress, enrolled_at, completed_at`,
		uuid.New(), userID, courseID, enrollmentStatusActive,
	).Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.Progress, &e.EnrolledAt, &e.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, "", apperr.Conflict(alreadyEnrolledMessage)
			case "23503":
				return nil, "", apperr.NotFound(courseNotFoundMessage)
			}
		}
		return nil, "", fmt.Errorf("create enrollment: %w", err)
	}
	return &e, title, nil
}

// MyCourses returns the user's enrollments with course summaries, newest
// first, plus the total count.
func (r *Repo) MyCourses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]EnrolledCourse, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.user_id, e.course_id, e.status, e.progress,
			e.enrolled_at, e.completed_at,
			c.title, c.slug, c.thumbnail, c.level, u.name,
			c.total_lessons, c.duration
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC, e.id
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var courses []EnrolledCourse
	for rows.Next() {
		var ec EnrolledCourse
		err := rows.Scan(
			&ec.ID, &ec.UserID, &ec.CourseID, &ec.Status, &ec.Progress,
			&ec.EnrolledAt, &ec.CompletedAt,
			&ec.CourseTitle, &ec.CourseSlug, &ec.Thumbnail, &ec.Level,
			&ec.InstructorName, &ec.TotalLessons, &ec.Duration,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan enrollment: %w", err)
		}
		courses = append(courses, ec)
	}
	return courses, total, rows.Err()
}

// Detail returns the user's enrollment in a course together with the full
// curriculum and per-lesson completion state. NotFound when not enrolled.
func (r *Repo) Detail(ctx context.Context, userID, courseID uuid.UUID) (*Detail, error) {
	var ec EnrolledCourse
	err := r.pool.QueryRow(ctx, `
		SELECT e.id, e.user_id, e.course_id, e.status, e.progress,
			e.enrolled_at, e.completed_at,
			c.title, c.slug, c.thumbnail, c.level, u.name,
			c.total_lessons, c.duration
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE e.user_id = $1 AND e.course_id = $2`,
		userID, courseID,
	).Scan(
		&ec.ID, &ec.UserID, &ec.CourseID, &ec.Status, &ec.Progress,
		&ec.EnrolledAt, &ec.CompletedAt,
		&ec.CourseTitle, &ec.CourseSlug, &ec.Thumbnail, &ec.Level,
		&ec.InstructorName, &ec.TotalLessons, &ec.Duration,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(notEnrolledMessage)
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.title, s."order",
			l.id, l.title, l.type, l.video_duration, l.is_free, l."order",
			lp.completed_at
		FROM sections s
		LEFT JOIN lessons l ON l.section_id = s.id
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = $2
		WHERE s.course_id = $1
		ORDER BY s."order", s.id, l."order", l.id`,
		courseID, userID)
	if err != nil {
		return nil, fmt.Errorf("list curriculum: %w", err)
	}
	defer rows.Close()

	var sections []SectionProgress
	for rows.Next() {
		var (
			sectionID     uuid.UUID
			sectionTitle  string
			sectionOrder  int
			lessonID      *uuid.UUID
			lessonTitle   *string
			lessonType    *string
			videoDuration *int
			isFree        *bool
			lessonOrder   *int
			completedAt   *time.Time
		)
		err := rows.Scan(&sectionID, &sectionTitle, &sectionOrder,
			&lessonID, &lessonTitle, &lessonType, &videoDuration, &isFree,
			&lessonOrder, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("scan curriculum: %w", err)
		}

		if len(sections) == 0 || sections[len(sections)-1].ID != sectionID {
			sections = append(sections, SectionProgress{
				ID:    sectionID,
				Title: sectionTitle,
				Order: sectionOrder,
			})
		}
		if lessonID == nil {
			continue
		}
		current := &sections[len(sections)-1]
		current.Lessons = append(current.Lessons, LessonProgress{
			ID:            *lessonID,
			Title:         *lessonTitle,
			Type:          *lessonType,
			VideoDuration: *videoDuration,
			IsFree:        *isFree,
			Order:         *lessonOrder,
			Completed:     completedAt != nil,
			CompletedAt:   completedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Detail{Enrollment: ec, Sections: sections}, nil
}
