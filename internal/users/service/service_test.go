package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub_backend/internal/shared/pagination"
	"learnhub_backend/internal/users/repository"
	"learnhub_backend/internal/users/transport"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	users map[uuid.UUID]*repository.User

	lastListParams repository.ListUsersParams

	courseCount   int64
	studentCount  int64
	reviewCount   int64
	averageRating float64
	statsErr      error
}

func newFakeStore(users ...*repository.User) *fakeStore {
	s := &fakeStore{users: make(map[uuid.UUID]*repository.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *fakeStore) List(_ context.Context, params repository.ListUsersParams) ([]repository.User, int64, error) {
	s.lastListParams = params
	users := make([]repository.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, int64(len(users)), nil
}

func (s *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, params repository.UpdateProfileParams) (*repository.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Bio != nil {
		u.Bio = params.Bio
	}
	if params.Avatar != nil {
		u.Avatar = params.Avatar
	}
	return u, nil
}

func (s *fakeStore) ChangeRole(_ context.Context, id uuid.UUID, role string) (*repository.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	u.Role = role
	return u, nil
}

func (s *fakeStore) SetActive(_ context.Context, id uuid.UUID, isActive bool) (*repository.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	u.IsActive = isActive
	return u, nil
}

func (s *fakeStore) CourseCount(context.Context, uuid.UUID) (int64, error) {
	return s.courseCount, s.statsErr
}

func (s *fakeStore) StudentCount(context.Context, uuid.UUID) (int64, error) {
	return s.studentCount, nil
}

func (s *fakeStore) ReviewStats(context.Context, uuid.UUID) (float64, int64, error) {
	return s.averageRating, s.reviewCount, nil
}

func testUser(role string) *repository.User {
	return &repository.User{
		ID:        uuid.New(),
		Email:     "jane@example.com",
		Name:      "Jane",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestChangeRoleRejectsSelf(t *testing.T) {
	admin := testUser("ADMIN")
	svc := New(newFakeStore(admin), nil, logger.New("development"))

	_, err := svc.ChangeRole(context.Background(), admin.ID, admin.ID, "STUDENT")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if appErr.Message != "You cannot change your own role" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func TestChangeRoleUpdatesTarget(t *testing.T) {
	admin := testUser("ADMIN")
	target := testUser("STUDENT")
	svc := New(newFakeStore(admin, target), nil, logger.New("development"))

	resp, err := svc.ChangeRole(context.Background(), admin.ID, target.ID, "INSTRUCTOR")
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if resp.Role != "INSTRUCTOR" {
		t.Fatalf("role = %q, want INSTRUCTOR", resp.Role)
	}
}

func TestSetStatusRejectsSelfDeactivation(t *testing.T) {
	admin := testUser("ADMIN")
	svc := New(newFakeStore(admin), nil, logger.New("development"))

	_, err := svc.SetStatus(context.Background(), admin.ID, admin.ID, false)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "You cannot deactivate your own account" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetStatusDeactivatesTarget(t *testing.T) {
	admin := testUser("ADMIN")
	target := testUser("STUDENT")
	svc := New(newFakeStore(admin, target), nil, logger.New("development"))

	resp, err := svc.SetStatus(context.Background(), admin.ID, target.ID, false)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if resp.IsActive {
		t.Fatal("expected target to be deactivated")
	}
}

func TestListPassesFiltersThrough(t *testing.T) {
	store := newFakeStore(testUser("STUDENT"))
	svc := New(store, nil, logger.New("development"))

	active := true
	_, err := svc.List(context.Background(), ListQuery{
		Role:     "STUDENT",
		Search:   "jane",
		IsActive: &active,
		Page:     pagination.Params{Page: 2, Limit: 20},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	got := store.lastListParams
	if got.Role != "STUDENT" || got.Search != "jane" || got.IsActive == nil || !*got.IsActive {
		t.Fatalf("unexpected list params: %+v", got)
	}
	if got.Limit != 20 || got.Offset != 20 {
		t.Fatalf("paging = limit %d offset %d, want 20/20", got.Limit, got.Offset)
	}
}

func TestInstructorStatsAggregates(t *testing.T) {
	store := newFakeStore()
	store.courseCount = 4
	store.studentCount = 120
	store.reviewCount = 35
	store.averageRating = 4.3
	svc := New(store, nil, logger.New("development"))

	stats, err := svc.InstructorStats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("instructor stats: %v", err)
	}

	want := transport.InstructorStatsResponse{TotalCourses: 4, TotalStudents: 120, TotalReviews: 35, AverageRating: 4.3}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
}

func TestInstructorStatsPropagatesFirstError(t *testing.T) {
	store := newFakeStore()
	store.statsErr = errors.New("query failed")
	svc := New(store, nil, logger.New("development"))

	if _, err := svc.InstructorStats(context.Background(), uuid.New()); !errors.Is(err, store.statsErr) {
		t.Fatalf("expected stats error, got %v", err)
	}
}

func TestPresignAvatarWithoutStorage(t *testing.T) {
	svc := New(newFakeStore(), nil, logger.New("development"))

	_, err := svc.PresignAvatar(context.Background(), uuid.New(), transport.PresignAvatarRequest{
		FileName:    "me.png",
		ContentType: "image/png",
		SizeBytes:   512,
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request without storage, got %v", err)
	}
}
