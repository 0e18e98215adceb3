// Package service implements the courses business logic.
package service

import (
	"context"
	"errors"
	"time"

	"learnhub_backend/internal/courses/repository"
	"learnhub_backend/internal/courses/transport"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/shared/pagination"
	"learnhub_backend/internal/storage"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/cache"
	"learnhub_backend/platform/logger"
	"learnhub_backend/platform/slug"

	"github.com/google/uuid"
)

const (
	statusDraft     = "DRAFT"
	statusPublished = "PUBLISHED"

	roleAdmin = "ADMIN"

	categoriesCacheKey = "categories"
	categoriesCacheTTL = time.Hour

	courseDetailCachePrefix = "courses:detail:"
	courseDetailCacheTTL    = 10 * time.Minute
	courseCachePattern      = "courses:*"

	msgCourseNotFound = "Course not found"
	msgNotCourseOwner = "You do not have permission to modify this course"
)

// CourseStore is the persistence surface the service depends on.
type CourseStore interface {
	Create(ctx context.Context, params repository.CreateCourseParams) (*repository.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Course, error)
	GetBySlug(ctx context.Context, slug string) (*repository.Course, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Rating(ctx context.Context, courseID uuid.UUID) (repository.RatingSummary, error)
	Curriculum(ctx context.Context, courseID uuid.UUID) ([]repository.CurriculumSection, error)
	EnrollmentCount(ctx context.Context, courseID uuid.UUID) (int64, error)
	List(ctx context.Context, params repository.ListCoursesParams) ([]repository.Course, int64, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateCourseParams) (*repository.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddSection(ctx context.Context, courseID uuid.UUID, title string, order *int) (*repository.Section, error)
	GetSection(ctx context.Context, id uuid.UUID) (*repository.Section, error)
	AddLesson(ctx context.Context, params repository.AddLessonParams) (*repository.Lesson, error)
	RecomputeCourseStats(ctx context.Context, courseID uuid.UUID) error
	TopCategories(ctx context.Context) ([]repository.Category, error)
}

// Cache is the subset of cache operations the service uses.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Uploader issues presigned thumbnail upload grants.
type Uploader interface {
	PresignThumbnailUpload(ctx context.Context, courseID uuid.UUID, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error)
}

// ListQuery holds the listing filters after transport parsing.
type ListQuery struct {
	CategorySlug string
	Level        string
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	Status       string
	SortBy       string
	SortOrder    string
	Page         pagination.Params
}

// Service implements course catalog management.
type Service struct {
	store   CourseStore
	cache   Cache
	uploads Uploader
	bus     events.Bus
	log     *logger.Logger
}

// New creates the courses service. uploads may be nil when MinIO is not
// configured.
func New(store CourseStore, cacheClient Cache, uploads Uploader, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		cache:   cacheClient,
		uploads: uploads,
		bus:     bus,
		log:     log,
	}
}

// Create inserts a new course owned by the instructor. The slug is derived
// from the title; collisions get a timestamp suffix.
func (s *Service) Create(ctx context.Context, instructorID uuid.UUID, req transport.CreateCourseRequest) (*transport.CourseResponse, error) {
	if err := validateDiscount(req.DiscountPrice, *req.Price); err != nil {
		return nil, err
	}

	courseSlug, err := s.resolveSlug(ctx, req.Title, nil)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = statusDraft
	}

	var publishedAt *time.Time
	if status == statusPublished {
		now := time.Now()
		publishedAt = &now
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return nil, apperr.BadRequest("Invalid category id")
	}

	course, err := s.store.Create(ctx, repository.CreateCourseParams{
		Title:         req.Title,
		Slug:          courseSlug,
		Description:   req.Description,
		Price:         *req.Price,
		DiscountPrice: req.DiscountPrice,
		Status:        status,
		InstructorID:  instructorID,
		CategoryID:    categoryID,
		Level:         req.Level,
		Thumbnail:     req.Thumbnail,
		PublishedAt:   publishedAt,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCourseCache(ctx)
	if course.Status == statusPublished {
		s.publishCoursePublished(ctx, course)
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

// Get fetches a course by UUID or slug. Unpublished courses are visible only
// to their owner and admins; everyone else gets NotFound.
func (s *Service) Get(ctx context.Context, idOrSlug string, actorID *uuid.UUID, actorRole string) (*transport.CourseDetailResponse, error) {
	if actorID == nil && s.cache != nil {
		var cached transport.CourseDetailResponse
		if err := s.cache.Get(ctx, courseDetailCachePrefix+idOrSlug, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.log.CacheError("get", courseDetailCachePrefix+idOrSlug, err)
		}
	}

	course, err := s.fetch(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	if course.Status != statusPublished && !isOwnerOrAdmin(course, actorID, actorRole) {
		return nil, apperr.NotFound(msgCourseNotFound)
	}

	rating, err := s.store.Rating(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.store.EnrollmentCount(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	curriculum, err := s.store.Curriculum(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	detail := &transport.CourseDetailResponse{
		CourseResponse:  toCourseResponse(course),
		AverageRating:   rating.Average,
		ReviewCount:     rating.Count,
		EnrollmentCount: enrollments,
		Sections:        toCurriculumResponse(curriculum),
	}

	if actorID == nil && course.Status == statusPublished && s.cache != nil {
		if err := s.cache.Set(ctx, courseDetailCachePrefix+idOrSlug, detail, courseDetailCacheTTL); err != nil {
			s.log.CacheError("set", courseDetailCachePrefix+idOrSlug, err)
		}
	}
	return detail, nil
}

// List returns a filtered page of courses. Without an explicit status filter
// only published courses are returned.
func (s *Service) List(ctx context.Context, query ListQuery) (*pagination.Page[transport.CourseResponse], error) {
	status := query.Status
	if status == "" {
		status = statusPublished
	}

	courses, total, err := s.store.List(ctx, repository.ListCoursesParams{
		CategorySlug: query.CategorySlug,
		Level:        query.Level,
		Search:       query.Search,
		MinPrice:     query.MinPrice,
		MaxPrice:     query.MaxPrice,
		Status:       status,
		SortBy:       query.SortBy,
		SortOrder:    query.SortOrder,
		Limit:        query.Page.Limit,
		Offset:       query.Page.Offset(),
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.CourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, toCourseResponse(&courses[i]))
	}

	return &pagination.Page[transport.CourseResponse]{
		Items:      items,
		Pagination: pagination.NewMeta(query.Page, total),
	}, nil
}

// Update patches a course. Only the owning instructor or an admin may modify
// it. The first transition to PUBLISHED stamps publishedAt and emits an
// event; later republishing keeps the original timestamp.
func (s *Service) Update(ctx context.Context, courseID, actorID uuid.UUID, actorRole string, req transport.UpdateCourseRequest) (*transport.CourseResponse, error) {
	course, err := s.store.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(course, &actorID, actorRole) {
		return nil, apperr.Forbidden(msgNotCourseOwner)
	}

	price := course.Price
	if req.Price != nil {
		price = *req.Price
	}
	discount := course.DiscountPrice
	if req.DiscountPrice != nil {
		discount = req.DiscountPrice
	}
	if err := validateDiscount(discount, price); err != nil {
		return nil, err
	}

	params := repository.UpdateCourseParams{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Status:        req.Status,
		Level:         req.Level,
		Thumbnail:     req.Thumbnail,
	}

	if req.CategoryID != nil {
		categoryID, err := parseOptionalUUID(req.CategoryID)
		if err != nil {
			return nil, apperr.BadRequest("Invalid category id")
		}
		params.CategoryID = categoryID
	}

	if req.Title != nil && *req.Title != course.Title {
		newSlug, err := s.resolveSlug(ctx, *req.Title, &courseID)
		if err != nil {
			return nil, err
		}
		params.Slug = &newSlug
	}

	firstPublish := req.Status != nil && *req.Status == statusPublished &&
		course.Status != statusPublished && course.PublishedAt == nil
	if firstPublish {
		now := time.Now()
		params.PublishedAt = &now
	}

	updated, err := s.store.Update(ctx, courseID, params)
	if err != nil {
		return nil, err
	}

	s.invalidateCourseCache(ctx)
	if firstPublish {
		s.publishCoursePublished(ctx, updated)
	}

	resp := toCourseResponse(updated)
	return &resp, nil
}

// Delete removes a course and, through cascades, its sections and lessons.
func (s *Service) Delete(ctx context.Context, courseID, actorID uuid.UUID, actorRole string) error {
	course, err := s.store.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !isOwnerOrAdmin(course, &actorID, actorRole) {
		return apperr.Forbidden(msgNotCourseOwner)
	}

	if err := s.store.Delete(ctx, courseID); err != nil {
		return err
	}
	s.invalidateCourseCache(ctx)
	return nil
}

// AddSection appends a section to the course curriculum.
func (s *Service) AddSection(ctx context.Context, courseID, actorID uuid.UUID, actorRole string, req transport.AddSectionRequest) (*transport.SectionResponse, error) {
	course, err := s.store.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(course, &actorID, actorRole) {
		return nil, apperr.Forbidden(msgNotCourseOwner)
	}

	section, err := s.store.AddSection(ctx, courseID, req.Title, req.Order)
	if err != nil {
		return nil, err
	}
	s.invalidateCourseCache(ctx)

	return &transport.SectionResponse{
		ID:       section.ID.String(),
		CourseID: section.CourseID.String(),
		Title:    section.Title,
		Order:    section.Order,
	}, nil
}

// AddLesson appends a lesson to a section and refreshes the course's
// denormalized lesson count and duration.
func (s *Service) AddLesson(ctx context.Context, sectionID, actorID uuid.UUID, actorRole string, req transport.AddLessonRequest) (*transport.LessonResponse, error) {
	section, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	course, err := s.store.GetByID(ctx, section.CourseID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(course, &actorID, actorRole) {
		return nil, apperr.Forbidden(msgNotCourseOwner)
	}

	lesson, err := s.store.AddLesson(ctx, repository.AddLessonParams{
		SectionID:     sectionID,
		Title:         req.Title,
		Type:          req.Type,
		Content:       req.Content,
		VideoURL:      req.VideoURL,
		VideoDuration: req.VideoDuration,
		IsFree:        req.IsFree,
		IsPublished:   req.IsPublished,
		Order:         req.Order,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.RecomputeCourseStats(ctx, course.ID); err != nil {
		return nil, err
	}
	s.invalidateCourseCache(ctx)

	return &transport.LessonResponse{
		ID:            lesson.ID.String(),
		SectionID:     lesson.SectionID.String(),
		Title:         lesson.Title,
		Type:          lesson.Type,
		Content:       lesson.Content,
		VideoURL:      lesson.VideoURL,
		VideoDuration: lesson.VideoDuration,
		IsFree:        lesson.IsFree,
		IsPublished:   lesson.IsPublished,
		Order:         lesson.Order,
	}, nil
}

// Categories returns the top-level category tree with published course
// counts, cached for an hour.
func (s *Service) Categories(ctx context.Context) ([]repository.Category, error) {
	if s.cache != nil {
		var cached []repository.Category
		if err := s.cache.Get(ctx, categoriesCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			s.log.CacheError("get", categoriesCacheKey, err)
		}
	}

	categories, err := s.store.TopCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, categoriesCacheKey, categories, categoriesCacheTTL); err != nil {
			s.log.CacheError("set", categoriesCacheKey, err)
		}
	}
	return categories, nil
}

// PresignThumbnail issues a presigned upload grant for a course thumbnail.
func (s *Service) PresignThumbnail(ctx context.Context, courseID, actorID uuid.UUID, actorRole string, req transport.PresignThumbnailRequest) (*transport.PresignedUploadResponse, error) {
	course, err := s.store.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(course, &actorID, actorRole) {
		return nil, apperr.Forbidden(msgNotCourseOwner)
	}

	if s.uploads == nil {
		return nil, apperr.BadRequest("File uploads are not configured")
	}

	grant, err := s.uploads.PresignThumbnailUpload(ctx, courseID, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return nil, err
	}

	return &transport.PresignedUploadResponse{
		URL:       grant.URL,
		FileKey:   grant.FileKey,
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

func (s *Service) fetch(ctx context.Context, idOrSlug string) (*repository.Course, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetBySlug(ctx, idOrSlug)
}

// resolveSlug derives a slug from the title, appending a timestamp suffix
// when the plain slug is taken. On renames the course's own slug does not
// count as a collision, so excludeID carries the course being updated.
func (s *Service) resolveSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	candidate := slug.Make(title)
	exists, err := s.store.SlugExists(ctx, candidate, excludeID)
	if err != nil {
		return "", err
	}
	if exists {
		candidate = slug.Disambiguate(candidate)
	}
	return candidate, nil
}

func (s *Service) invalidateCourseCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, courseCachePattern); err != nil {
		s.log.CacheError("delete_pattern", courseCachePattern, err)
	}
}

func (s *Service) publishCoursePublished(ctx context.Context, course *repository.Course) {
	s.bus.Publish(ctx, events.CoursePublished{
		BaseEvent:    events.NewBaseEvent(),
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Title:        course.Title,
		Slug:         course.Slug,
	})
}

func isOwnerOrAdmin(course *repository.Course, actorID *uuid.UUID, actorRole string) bool {
	if actorRole == roleAdmin {
		return true
	}
	return actorID != nil && course.InstructorID == *actorID
}

func validateDiscount(discount *float64, price float64) error {
	if discount != nil && *discount > price {
		return apperr.ValidationFields("Validation failed", apperr.FieldErrors{
			"discountPrice": {"Discount price cannot exceed the course price"},
		})
	}
	return nil
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toCourseResponse(c *repository.Course) transport.CourseResponse {
	var categoryID *string
	if c.CategoryID != nil {
		id := c.CategoryID.String()
		categoryID = &id
	}
	return transport.CourseResponse{
		ID:             c.ID.String(),
		Title:          c.Title,
		Slug:           c.Slug,
		Description:    c.Description,
		Price:          c.Price,
		DiscountPrice:  c.DiscountPrice,
		Status:         c.Status,
		InstructorID:   c.InstructorID.String(),
		InstructorName: c.InstructorName,
		CategoryID:     categoryID,
		CategoryName:   c.CategoryName,
		Level:          c.Level,
		Thumbnail:      c.Thumbnail,
		TotalLessons:   c.TotalLessons,
		Duration:       c.Duration,
		PublishedAt:    c.PublishedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toCurriculumResponse(sections []repository.CurriculumSection) []transport.CurriculumSectionResponse {
	out := make([]transport.CurriculumSectionResponse, 0, len(sections))
	for _, section := range sections {
		lessons := make([]transport.CurriculumLessonResponse, 0, len(section.Lessons))
		for _, lesson := range section.Lessons {
			lessons = append(lessons, transport.CurriculumLessonResponse{
				ID:            lesson.ID.String(),
				Title:         lesson.Title,
				Type:          lesson.Type,
				VideoDuration: lesson.VideoDuration,
				IsFree:        lesson.IsFree,
				IsPublished:   lesson.IsPublished,
				Order:         lesson.Order,
			})
		}
		out = append(out, transport.CurriculumSectionResponse{
			ID:      section.ID.String(),
			Title:   section.Title,
			Order:   section.Order,
			Lessons: lessons,
		})
	}
	return out
}

// Compile-time checks that the production dependencies satisfy the
// service's interfaces.
var (
	_ CourseStore = (*repository.Repo)(nil)
	_ Cache       = (*cache.Cache)(nil)
	_ Uploader    = (*storage.Service)(nil)
)
