package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
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

type fakeStore struct {
	courses    map[uuid.UUID]*repository.Course
	sections   map[uuid.UUID]*repository.Section
	takenSlugs map[string]bool
	curricula  map[uuid.UUID][]repository.CurriculumSection

	lastListParams  repository.ListCoursesParams
	recomputedStats []uuid.UUID
	categories      []repository.Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses:    make(map[uuid.UUID]*repository.Course),
		sections:   make(map[uuid.UUID]*repository.Section),
		takenSlugs: make(map[string]bool),
		curricula:  make(map[uuid.UUID][]repository.CurriculumSection),
	}
}

func (s *fakeStore) add(course *repository.Course) {
	s.courses[course.ID] = course
}

func (s *fakeStore) Create(_ context.Context, params repository.CreateCourseParams) (*repository.Course, error) {
	course := &repository.Course{
		ID:            uuid.New(),
		Title:         params.Title,
		Slug:          params.Slug,
		Description:   params.Description,
		Price:         params.Price,
		DiscountPrice: params.DiscountPrice,
		Status:        params.Status,
		InstructorID:  params.InstructorID,
		CategoryID:    params.CategoryID,
		Level:         params.Level,
		Thumbnail:     params.Thumbnail,
		PublishedAt:   params.PublishedAt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.add(course)
	return course, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}
	return course, nil
}

func (s *fakeStore) GetBySlug(_ context.Context, courseSlug string) (*repository.Course, error) {
	for _, course := range s.courses {
		if course.Slug == courseSlug {
			return course, nil
		}
	}
	return nil, apperr.NotFound("Course not found")
}

func (s *fakeStore) SlugExists(_ context.Context, courseSlug string, excludeID *uuid.UUID) (bool, error) {
	for id, course := range s.courses {
		if course.Slug == courseSlug && (excludeID == nil || id != *excludeID) {
			return true, nil
		}
	}
	return s.takenSlugs[courseSlug], nil
}

func (s *fakeStore) Rating(context.Context, uuid.UUID) (repository.RatingSummary, error) {
	return repository.RatingSummary{Average: 4.5, Count: 2}, nil
}

func (s *fakeStore) Curriculum(_ context.Context, courseID uuid.UUID) ([]repository.CurriculumSection, error) {
	return s.curricula[courseID], nil
}

func (s *fakeStore) EnrollmentCount(context.Context, uuid.UUID) (int64, error) {
	return 7, nil
}

func (s *fakeStore) List(_ context.Context, params repository.ListCoursesParams) ([]repository.Course, int64, error) {
	s.lastListParams = params
	return nil, 0, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateCourseParams) (*repository.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, apperr.NotFound("Course not found")
	}
	if params.Title != nil {
		course.Title = *params.Title
	}
	if params.Slug != nil {
		course.Slug = *params.Slug
	}
	if params.Price != nil {
		course.Price = *params.Price
	}
	if params.DiscountPrice != nil {
		course.DiscountPrice = params.DiscountPrice
	}
	if params.Status != nil {
		course.Status = *params.Status
	}
	if params.PublishedAt != nil {
		course.PublishedAt = params.PublishedAt
	}
	return course, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.courses[id]; !ok {
		return apperr.NotFound("Course not found")
	}
	delete(s.courses, id)
	return nil
}

func (s *fakeStore) AddSection(_ context.Context, courseID uuid.UUID, title string, order *int) (*repository.Section, error) {
	section := &repository.Section{ID: uuid.New(), CourseID: courseID, Title: title, Order: 1}
	if order != nil {
		section.Order = *order
	}
	s.sections[section.ID] = section
	return section, nil
}

func (s *fakeStore) GetSection(_ context.Context, id uuid.UUID) (*repository.Section, error) {
	section, ok := s.sections[id]
	if !ok {
		return nil, apperr.NotFound("Section not found")
	}
	return section, nil
}

func (s *fakeStore) AddLesson(_ context.Context, params repository.AddLessonParams) (*repository.Lesson, error) {
	lesson := &repository.Lesson{
		ID:            uuid.New(),
		SectionID:     params.SectionID,
		Title:         params.Title,
		Type:          params.Type,
		Content:       params.Content,
		VideoURL:      params.VideoURL,
		VideoDuration: params.VideoDuration,
		IsFree:        params.IsFree,
		IsPublished:   params.IsPublished,
		Order:         1,
	}
	if params.Order != nil {
		lesson.Order = *params.Order
	}
	return lesson, nil
}

func (s *fakeStore) RecomputeCourseStats(_ context.Context, courseID uuid.UUID) error {
	s.recomputedStats = append(s.recomputedStats, courseID)
	return nil
}

func (s *fakeStore) TopCategories(context.Context) ([]repository.Category, error) {
	return s.categories, nil
}

type fakeCache struct {
	entries         map[string][]byte
	deletedPatterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) error {
	raw, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) DeletePattern(_ context.Context, pattern string) error {
	c.deletedPatterns = append(c.deletedPatterns, pattern)
	return nil
}

type captureBus struct {
	published []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *captureBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}

type fakeUploader struct {
	calls int
}

func (u *fakeUploader) PresignThumbnailUpload(_ context.Context, courseID uuid.UUID, fileName, _ string, _ int64) (*storage.PresignedURL, error) {
	u.calls++
	return &storage.PresignedURL{
		URL:       "https://minio.local/upload",
		FileKey:   "thumbnails/" + courseID.String() + "/" + fileName,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func newTestService(store *fakeStore, c Cache, uploads Uploader, bus events.Bus) *Service {
	return New(store, c, uploads, bus, logger.New("development"))
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func draftCourse(instructorID uuid.UUID) *repository.Course {
	return &repository.Course{
		ID:           uuid.New(),
		Title:        "Go Basics",
		Slug:         "go-basics",
		Description:  "An introduction to Go programming",
		Price:        49.99,
		Status:       "DRAFT",
		InstructorID: instructorID,
		Level:        "BEGINNER",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestCreateDisambiguatesTakenSlug(t *testing.T) {
	store := newFakeStore()
	store.takenSlugs[slug.Make("Go Basics")] = true
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateCourseRequest{
		Title:       "Go Basics",
		Description: "An introduction to Go programming",
		Price:       floatPtr(49.99),
		Level:       "BEGINNER",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Slug == "go-basics" {
		t.Fatal("expected a disambiguated slug for a taken title")
	}
	if !strings.HasPrefix(resp.Slug, "go-basics-") {
		t.Fatalf("slug %q does not carry the base prefix", resp.Slug)
	}
}

func TestCreateRejectsDiscountAbovePrice(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeCache(), nil, &captureBus{})

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateCourseRequest{
		Title:         "Go Basics",
		Description:   "An introduction to Go programming",
		Price:         floatPtr(20),
		DiscountPrice: floatPtr(30),
		Level:         "BEGINNER",
	})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := appErr.Fields["discountPrice"]; !ok {
		t.Fatalf("expected discountPrice field error, got %v", appErr.Fields)
	}
}

func TestCreatePublishedStampsTimestampAndEmitsEvent(t *testing.T) {
	store := newFakeStore()
	bus := &captureBus{}
	svc := newTestService(store, newFakeCache(), nil, bus)

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateCourseRequest{
		Title:       "Go Basics",
		Description: "An introduction to Go programming",
		Price:       floatPtr(49.99),
		Level:       "BEGINNER",
		Status:      "PUBLISHED",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.PublishedAt == nil {
		t.Fatal("expected publishedAt on a course created as PUBLISHED")
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.CoursePublished); !ok {
		t.Fatalf("expected CoursePublished, got %T", bus.published[0])
	}
}

func TestCreateDefaultsToDraftWithoutEvent(t *testing.T) {
	bus := &captureBus{}
	svc := newTestService(newFakeStore(), newFakeCache(), nil, bus)

	resp, err := svc.Create(context.Background(), uuid.New(), transport.CreateCourseRequest{
		Title:       "Go Basics",
		Description: "An introduction to Go programming",
		Price:       floatPtr(49.99),
		Level:       "BEGINNER",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Status != "DRAFT" {
		t.Fatalf("status = %q, want DRAFT", resp.Status)
	}
	if resp.PublishedAt != nil {
		t.Fatal("draft course must not carry publishedAt")
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no events for a draft, got %d", len(bus.published))
	}
}

func TestListDefaultsToPublishedStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	if _, err := svc.List(context.Background(), ListQuery{
		Page: pagination.Params{Page: 1, Limit: 10},
	}); err != nil {
		t.Fatalf("list: %v", err)
	}

	if store.lastListParams.Status != "PUBLISHED" {
		t.Fatalf("status filter = %q, want PUBLISHED", store.lastListParams.Status)
	}
}

func TestGetHidesUnpublishedFromStrangers(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	if _, err := svc.Get(context.Background(), course.ID.String(), &stranger, "STUDENT"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}

	if _, err := svc.Get(context.Background(), course.ID.String(), &owner, "INSTRUCTOR"); err != nil {
		t.Fatalf("owner must see own draft: %v", err)
	}

	admin := uuid.New()
	if _, err := svc.Get(context.Background(), course.ID.String(), &admin, "ADMIN"); err != nil {
		t.Fatalf("admin must see any draft: %v", err)
	}
}

func TestGetCachesAnonymousPublishedLookups(t *testing.T) {
	store := newFakeStore()
	course := draftCourse(uuid.New())
	course.Status = "PUBLISHED"
	now := time.Now()
	course.PublishedAt = &now
	store.add(course)
	c := newFakeCache()
	svc := newTestService(store, c, nil, &captureBus{})

	detail, err := svc.Get(context.Background(), course.Slug, nil, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.EnrollmentCount != 7 {
		t.Fatalf("enrollment count = %d, want 7", detail.EnrollmentCount)
	}

	if _, ok := c.entries["courses:detail:"+course.Slug]; !ok {
		t.Fatal("expected anonymous lookup to populate the cache")
	}

	// A second lookup is served from cache even after the row disappears.
	delete(store.courses, course.ID)
	if _, err := svc.Get(context.Background(), course.Slug, nil, ""); err != nil {
		t.Fatalf("cached get: %v", err)
	}
}

func TestGetIncludesCurriculum(t *testing.T) {
	store := newFakeStore()
	course := draftCourse(uuid.New())
	course.Status = "PUBLISHED"
	store.add(course)

	intro := repository.Section{ID: uuid.New(), CourseID: course.ID, Title: "Introduction", Order: 1}
	deepDive := repository.Section{ID: uuid.New(), CourseID: course.ID, Title: "Deep Dive", Order: 2}
	store.curricula[course.ID] = []repository.CurriculumSection{
		{Section: intro, Lessons: []repository.Lesson{
			{ID: uuid.New(), SectionID: intro.ID, Title: "Welcome", Type: "VIDEO", VideoDuration: 120, IsFree: true, IsPublished: true, Order: 1},
			{ID: uuid.New(), SectionID: intro.ID, Title: "Setup", Type: "TEXT", IsPublished: true, Order: 2},
		}},
		{Section: deepDive},
	}
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	detail, err := svc.Get(context.Background(), course.ID.String(), nil, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if len(detail.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(detail.Sections))
	}
	if detail.Sections[0].Title != "Introduction" || detail.Sections[1].Title != "Deep Dive" {
		t.Fatalf("section order wrong: %q, %q", detail.Sections[0].Title, detail.Sections[1].Title)
	}
	if len(detail.Sections[0].Lessons) != 2 {
		t.Fatalf("intro lessons = %d, want 2", len(detail.Sections[0].Lessons))
	}
	if !detail.Sections[0].Lessons[0].IsFree {
		t.Fatal("expected the preview lesson to be marked free")
	}
	if len(detail.Sections[1].Lessons) != 0 {
		t.Fatalf("empty section must carry no lessons, got %d", len(detail.Sections[1].Lessons))
	}
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	store := newFakeStore()
	course := draftCourse(uuid.New())
	store.add(course)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	_, err := svc.Update(context.Background(), course.ID, uuid.New(), "INSTRUCTOR", transport.UpdateCourseRequest{
		Title: strPtr("New Title Here"),
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateFirstPublishEmitsEventOnce(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	bus := &captureBus{}
	svc := newTestService(store, newFakeCache(), nil, bus)

	resp, err := svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		Status: strPtr("PUBLISHED"),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if resp.PublishedAt == nil {
		t.Fatal("first publish must stamp publishedAt")
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event after first publish, got %d", len(bus.published))
	}
	firstPublishedAt := *resp.PublishedAt

	// Unpublish and publish again: the original timestamp and event stand.
	if _, err := svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		Status: strPtr("DRAFT"),
	}); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	resp, err = svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		Status: strPtr("PUBLISHED"),
	})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}

	if !resp.PublishedAt.Equal(firstPublishedAt) {
		t.Fatalf("republish changed publishedAt: %v != %v", resp.PublishedAt, firstPublishedAt)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected no second event on republish, got %d", len(bus.published))
	}
}

func TestUpdateValidatesEffectiveDiscount(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	// Existing price is 49.99; a patch raising only the discount must fail.
	_, err := svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		DiscountPrice: floatPtr(60),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTitleChangeRefreshesSlug(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	resp, err := svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		Title: strPtr("Advanced Go Patterns"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.Slug != "advanced-go-patterns" {
		t.Fatalf("slug = %q, want advanced-go-patterns", resp.Slug)
	}
}

func TestUpdateTitleKeepsOwnSlugWithoutSuffix(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	// "Go Basics!" slugifies back to the course's current slug. The course
	// must not collide with itself and pick up a suffix.
	resp, err := svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		Title: strPtr("Go Basics!"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.Slug != "go-basics" {
		t.Fatalf("slug = %q, want go-basics", resp.Slug)
	}
}

func TestUpdateTitleCollidingWithOtherCourseGetsSuffix(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	other := draftCourse(uuid.New())
	other.Title = "Advanced Go Patterns"
	other.Slug = "advanced-go-patterns"
	store.add(other)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	resp, err := svc.Update(context.Background(), course.ID, owner, "INSTRUCTOR", transport.UpdateCourseRequest{
		Title: strPtr("Advanced Go Patterns"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.Slug == "advanced-go-patterns" {
		t.Fatal("expected a disambiguated slug when another course holds it")
	}
	if !strings.HasPrefix(resp.Slug, "advanced-go-patterns-") {
		t.Fatalf("slug %q does not carry the base prefix", resp.Slug)
	}
}

func TestDeleteInvalidatesCache(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	c := newFakeCache()
	svc := newTestService(store, c, nil, &captureBus{})

	if err := svc.Delete(context.Background(), course.ID, owner, "INSTRUCTOR"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(c.deletedPatterns) != 1 || c.deletedPatterns[0] != "courses:*" {
		t.Fatalf("expected courses:* invalidation, got %v", c.deletedPatterns)
	}
	if _, ok := store.courses[course.ID]; ok {
		t.Fatal("course should be gone")
	}
}

func TestAddLessonRecomputesCourseStats(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	section, err := store.AddSection(context.Background(), course.ID, "Getting Started", nil)
	if err != nil {
		t.Fatalf("seed section: %v", err)
	}
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	lesson, err := svc.AddLesson(context.Background(), section.ID, owner, "INSTRUCTOR", transport.AddLessonRequest{
		Title:         "Installing the toolchain",
		Type:          "VIDEO",
		VideoDuration: 300,
	})
	if err != nil {
		t.Fatalf("add lesson: %v", err)
	}
	if lesson.SectionID != section.ID.String() {
		t.Fatalf("lesson bound to %s, want %s", lesson.SectionID, section.ID)
	}

	if len(store.recomputedStats) != 1 || store.recomputedStats[0] != course.ID {
		t.Fatalf("expected stats recompute for %s, got %v", course.ID, store.recomputedStats)
	}
}

func TestCategoriesCacheThrough(t *testing.T) {
	store := newFakeStore()
	store.categories = []repository.Category{{ID: uuid.New(), Name: "Programming", Slug: "programming", CourseCount: 3}}
	c := newFakeCache()
	svc := newTestService(store, c, nil, &captureBus{})

	first, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(first) != 1 || first[0].Slug != "programming" {
		t.Fatalf("unexpected categories: %v", first)
	}

	// Swap the backing data: the cached copy must still be served.
	store.categories = nil
	second, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected cached categories, got %v", second)
	}
}

func TestPresignThumbnailWithoutStorage(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	svc := newTestService(store, newFakeCache(), nil, &captureBus{})

	_, err := svc.PresignThumbnail(context.Background(), course.ID, owner, "INSTRUCTOR", transport.PresignThumbnailRequest{
		FileName:    "cover.png",
		ContentType: "image/png",
		SizeBytes:   1024,
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request without storage, got %v", err)
	}
}

func TestPresignThumbnailIssuesGrant(t *testing.T) {
	owner := uuid.New()
	store := newFakeStore()
	course := draftCourse(owner)
	store.add(course)
	uploader := &fakeUploader{}
	svc := newTestService(store, newFakeCache(), uploader, &captureBus{})

	grant, err := svc.PresignThumbnail(context.Background(), course.ID, owner, "INSTRUCTOR", transport.PresignThumbnailRequest{
		FileName:    "cover.png",
		ContentType: "image/png",
		SizeBytes:   1024,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if uploader.calls != 1 {
		t.Fatalf("uploader calls = %d, want 1", uploader.calls)
	}
	if !strings.Contains(grant.FileKey, course.ID.String()) {
		t.Fatalf("file key %q missing course id", grant.FileKey)
	}
}
