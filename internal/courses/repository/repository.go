// Package repository provides persistence for the courses bounded context.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learnhub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	courseNotFoundMessage  = "Course not found"
	sectionNotFoundMessage = "Section not found"
)

const courseColumns = `
	c.id, c.title, c.slug, c.description, c.price, c.discount_price, c.status,
	c.instructor_id, u.name, c.category_id, cat.name, c.level, c.thumbnail,
	c.total_lessons, c.duration, c.published_at, c.created_at, c.updated_at`

const courseJoins = `
	FROM courses c
	JOIN users u ON u.id = c.instructor_id
	LEFT JOIN categories cat ON cat.id = c.category_id`

// Repo implements the courses repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new courses repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a course. A slug collision that slips past the caller's
// pre-check surfaces as Conflict.
func (r *Repo) Create(ctx context.Context, params CreateCourseParams) (*Course, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO courses (id, title, slug, description, price, discount_price,
			status, instructor_id, category_id, level, thumbnail, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		uuid.New(), params.Title, params.Slug, params.Description, params.Price,
		params.DiscountPrice, params.Status, params.InstructorID, params.CategoryID,
		params.Level, params.Thumbnail, params.PublishedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, apperr.Conflict("A course with this slug already exists")
			case "23503":
				return nil, apperr.BadRequest("Referenced category does not exist")
			}
		}
		return nil, fmt.Errorf("create course: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a course with instructor and category context.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*Course, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+courseJoins+` WHERE c.id = $1`, id)
	return scanCourse(row)
}

// GetBySlug fetches a course by its slug.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (*Course, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+courseJoins+` WHERE c.slug = $1`, slug)
	return scanCourse(row)
}

// SlugExists reports whether a slug is taken by a course other than
// excludeID. A nil excludeID checks against every course.
func (r *Repo) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM courses
			WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2)
		)`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Rating returns the review aggregate for a course.
func (r *Repo) Rating(ctx context.Context, courseID uuid.UUID) (RatingSummary, error) {
	var summary RatingSummary
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE course_id = $1`,
		courseID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return RatingSummary{}, fmt.Errorf("course rating: %w", err)
	}
	return summary, nil
}

// EnrollmentCount returns how many users are enrolled in a course.
func (r *Repo) EnrollmentCount(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("enrollment count: %w", err)
	}
	return count, nil
}

// List returns filtered, sorted, paginated courses plus the total count.
func (r *Repo) List(ctx context.Context, params ListCoursesParams) ([]Course, int64, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("c.status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}
	if params.CategorySlug != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("cat.slug = $%d", argIdx))
		args = append(args, params.CategorySlug)
		argIdx++
	}
	if params.Level != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("c.level = $%d", argIdx))
		args = append(args, params.Level)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(c.title ILIKE $%d OR c.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.price >= $%d", argIdx))
		args = append(args, *params.MinPrice)
		argIdx++
	}
	if params.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.price <= $%d", argIdx))
		args = append(args, *params.MaxPrice)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, courseJoins, whereClause)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	sortColumn := "c.created_at"
	switch params.SortBy {
	case "price":
		sortColumn = "c.price"
	case "title":
		sortColumn = "c.title"
	case "enrollments":
		sortColumn = "(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id)"
	}

	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY %s %s, c.id
		LIMIT $%d OFFSET $%d`,
		courseColumns, courseJoins, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		course, err := scanCourseRow(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *course)
	}
	return courses, total, rows.Err()
}

// Update applies a patch to a course.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateCourseParams) (*Course, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE courses SET
			title = COALESCE($2, title),
			slug = COALESCE($3, slug),
			description = COALESCE($4, description),
			price = COALESCE($5, price),
			discount_price = COALESCE($6, discount_price),
			status = COALESCE($7, status),
			category_id = COALESCE($8, category_id),
			level = COALESCE($9, level),
			thumbnail = COALESCE($10, thumbnail),
			published_at = COALESCE($11, published_at),
			updated_at = now()
		WHERE id = $1`,
		id, params.Title, params.Slug, params.Description, params.Price,
		params.DiscountPrice, params.Status, params.CategoryID, params.Level,
		params.Thumbnail, params.PublishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("A course with this slug already exists")
		}
		return nil, fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound(courseNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}

// Delete hard-deletes a course; sections and lessons cascade.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(courseNotFoundMessage)
	}
	return nil
}

// AddSection inserts a section. A nil order takes max+1 within the course.
func (r *Repo) AddSection(ctx context.Context, courseID uuid.UUID, title string, order *int) (*Section, error) {
	var s Section
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sections (id, course_id, title, "order")
		VALUES ($1, $2, $3, COALESCE($4::int,
			(SELECT COALESCE(MAX("order"), 0) + 1 FROM sections WHERE course_id = $2)))
		RETURNING id, course_id, title, "order"`,
		uuid.New(), courseID, title, order,
	).Scan(&s.ID, &s.CourseID, &s.Title, &s.Order)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperr.NotFound(courseNotFoundMessage)
		}
		return nil, fmt.Errorf("add section: %w", err)
	}
	return &s, nil
}

// GetSection fetches a section row.
func (r *Repo) GetSection(ctx context.Context, id uuid.UUID) (*Section, error) {
	var s Section
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, title, "order" FROM sections WHERE id = $1`, id,
	).Scan(&s.ID, &s.CourseID, &s.Title, &s.Order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(sectionNotFoundMessage)
		}
		return nil, fmt.Errorf("get section: %w", err)
	}
	return &s, nil
}

// AddLesson inserts a lesson. A nil order takes max+1 within the section.
func (r *Repo) AddLesson(ctx context.Context, params AddLessonParams) (*Lesson, error) {
	var l Lesson
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lessons (id, section_id, title, type, content, video_url,
			video_duration, is_free, is_published, "order")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::int,
			(SELECT COALESCE(MAX("order"), 0) + 1 FROM lessons WHERE section_id = $2)))
		RETURNING id, section_id, title, type, content, video_url,
			video_duration, is_free, is_published, "order"`,
		uuid.New(), params.SectionID, params.Title, params.Type, params.Content,
		params.VideoURL, params.VideoDuration, params.IsFree, params.IsPublished,
		params.Order,
	).Scan(&l.ID, &l.SectionID, &l.Title, &l.Type, &l.Content, &l.VideoURL,
		&l.VideoDuration, &l.IsFree, &l.IsPublished, &l.Order)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperr.NotFound(sectionNotFoundMessage)
		}
		return nil, fmt.Errorf("add lesson: %w", err)
	}
	return &l, nil
}

// Curriculum returns the course's sections in order, each carrying its
// lessons in order. Sections without lessons are included.
func (r *Repo) Curriculum(ctx context.Context, courseID uuid.UUID) ([]CurriculumSection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.course_id, s.title, s."order",
			l.id, l.title, l.type, l.content, l.video_url,
			l.video_duration, l.is_free, l.is_published, l."order"
		FROM sections s
		LEFT JOIN lessons l ON l.section_id = s.id
		WHERE s.course_id = $1
		ORDER BY s."order", s.id, l."order", l.id`,
		courseID)
	if err != nil {
		return nil, fmt.Errorf("course curriculum: %w", err)
	}
	defer rows.Close()

	var sections []CurriculumSection
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s Section
		var lessonID *uuid.UUID
		var lessonTitle, lessonType, content, videoURL *string
		var videoDuration, lessonOrder *int
		var isFree, isPublished *bool
		if err := rows.Scan(
			&s.ID, &s.CourseID, &s.Title, &s.Order,
			&lessonID, &lessonTitle, &lessonType, &content, &videoURL,
			&videoDuration, &isFree, &isPublished, &lessonOrder,
		); err != nil {
			return nil, fmt.Errorf("scan curriculum row: %w", err)
		}

		pos, ok := index[s.ID]
		if !ok {
			pos = len(sections)
			index[s.ID] = pos
			sections = append(sections, CurriculumSection{Section: s})
		}
		if lessonID == nil {
			continue
		}
		sections[pos].Lessons = append(sections[pos].Lessons, Lesson{
			ID:            *lessonID,
			SectionID:     s.ID,
			Title:         *lessonTitle,
			Type:          *lessonType,
			Content:       content,
			VideoURL:      videoURL,
			VideoDuration: *videoDuration,
			IsFree:        *isFree,
			IsPublished:   *isPublished,
			Order:         *lessonOrder,
		})
	}
	return sections, rows.Err()
}

// RecomputeCourseStats resets the denormalized lesson aggregates from a
// full rescan of the course's lessons.
func (r *Repo) RecomputeCourseStats(ctx context.Context, courseID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE courses SET
			total_lessons = stats.lesson_count,
			duration = stats.total_duration,
			updated_at = now()
		FROM (
			SELECT COUNT(l.id) AS lesson_count,
				COALESCE(SUM(l.video_duration), 0) AS total_duration
			FROM lessons l
			JOIN sections s ON s.id = l.section_id
			WHERE s.course_id = $1
		) AS stats
		WHERE courses.id = $1`,
		courseID)
	if err != nil {
		return fmt.Errorf("recompute course stats: %w", err)
	}
	return nil
}

// TopCategories returns top-level categories with children and published
// course counts.
func (r *Repo) TopCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cat.id, cat.name, cat.slug, cat.parent_id,
			(SELECT COUNT(*) FROM courses c
			 WHERE c.category_id = cat.id AND c.status = 'PUBLISHED')
		FROM categories cat
		ORDER BY cat.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var all []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.ParentID, &cat.CourseCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		all = append(all, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Assemble the one-level tree in memory.
	children := make(map[uuid.UUID][]Category)
	for _, cat := range all {
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat)
		}
	}

	var top []Category
	for _, cat := range all {
		if cat.ParentID == nil {
			cat.Children = children[cat.ID]
			top = append(top, cat)
		}
	}
	return top, nil
}

func scanCourse(row pgx.Row) (*Course, error) {
	course, err := scanCourseRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(courseNotFoundMessage)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

func scanCourseRow(row pgx.Row) (*Course, error) {
	var c Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.Price, &c.DiscountPrice,
		&c.Status, &c.InstructorID, &c.InstructorName, &c.CategoryID,
		&c.CategoryName, &c.Level, &c.Thumbnail, &c.TotalLessons, &c.Duration,
		&c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
