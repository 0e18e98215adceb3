// Package service implements the users business logic.
package service

import (
	"context"

	"learnhub_backend/internal/shared/pagination"
	"learnhub_backend/internal/storage"
	"learnhub_backend/internal/users/repository"
	"learnhub_backend/internal/users/transport"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UserStore is the persistence surface the service depends on.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error)
	List(ctx context.Context, params repository.ListUsersParams) ([]repository.User, int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params repository.UpdateProfileParams) (*repository.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role string) (*repository.User, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) (*repository.User, error)
	CourseCount(ctx context.Context, instructorID uuid.UUID) (int64, error)
	StudentCount(ctx context.Context, instructorID uuid.UUID) (int64, error)
	ReviewStats(ctx context.Context, instructorID uuid.UUID) (avg float64, count int64, err error)
}

// Uploader issues presigned avatar upload grants.
type Uploader interface {
	PresignAvatarUpload(ctx context.Context, userID uuid.UUID, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error)
}

// ListQuery holds the admin listing filters after transport parsing.
type ListQuery struct {
	Role     string
	Search   string
	IsActive *bool
	Page     pagination.Params
}

// Service implements account administration and profile management.
type Service struct {
	store   UserStore
	uploads Uploader
	log     *logger.Logger
}

// New creates the users service. uploads may be nil when MinIO is not
// configured.
func New(store UserStore, uploads Uploader, log *logger.Logger) *Service {
	return &Service{store: store, uploads: uploads, log: log}
}

// List returns a filtered page of accounts for the admin view.
func (s *Service) List(ctx context.Context, query ListQuery) (*pagination.Page[transport.UserResponse], error) {
	users, total, err := s.store.List(ctx, repository.ListUsersParams{
		Role:     query.Role,
		Search:   query.Search,
		IsActive: query.IsActive,
		Limit:    query.Page.Limit,
		Offset:   query.Page.Offset(),
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	return &pagination.Page[transport.UserResponse]{
		Items:      items,
		Pagination: pagination.NewMeta(query.Page, total),
	}, nil
}

// UpdateProfile patches the caller's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (*transport.UserResponse, error) {
	user, err := s.store.UpdateProfile(ctx, userID, repository.UpdateProfileParams{
		Name:   req.Name,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ChangeRole sets another user's role. Admins cannot change their own role
// so a deployment always keeps at least the acting admin.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*transport.UserResponse, error) {
	if actorID == userID {
		return nil, apperr.BadRequest("You cannot change your own role")
	}

	user, err := s.store.ChangeRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.log.Info("user role changed",
		"user_id", userID.String(), "role", role, "changed_by", actorID.String())

	resp := toUserResponse(user)
	return &resp, nil
}

// SetStatus activates or deactivates an account. Deactivated accounts fail
// login and token refresh.
func (s *Service) SetStatus(ctx context.Context, actorID, userID uuid.UUID, isActive bool) (*transport.UserResponse, error) {
	if actorID == userID {
		return nil, apperr.BadRequest("You cannot deactivate your own account")
	}

	user, err := s.store.SetActive(ctx, userID, isActive)
	if err != nil {
		return nil, err
	}
	s.log.Info("user status changed",
		"user_id", userID.String(), "is_active", isActive, "changed_by", actorID.String())

	resp := toUserResponse(user)
	return &resp, nil
}

// InstructorStats aggregates course, student, and rating numbers for the
// instructor. The three counts are independent queries and run concurrently.
func (s *Service) InstructorStats(ctx context.Context, instructorID uuid.UUID) (*transport.InstructorStatsResponse, error) {
	var stats transport.InstructorStatsResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.store.CourseCount(gctx, instructorID)
		stats.TotalCourses = count
		return err
	})
	g.Go(func() error {
		count, err := s.store.StudentCount(gctx, instructorID)
		stats.TotalStudents = count
		return err
	})
	g.Go(func() error {
		avg, count, err := s.store.ReviewStats(gctx, instructorID)
		stats.AverageRating = avg
		stats.TotalReviews = count
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &stats, nil
}

// PresignAvatar issues a presigned upload grant for the caller's avatar.
func (s *Service) PresignAvatar(ctx context.Context, userID uuid.UUID, req transport.PresignAvatarRequest) (*transport.PresignedUploadResponse, error) {
	if s.uploads == nil {
		return nil, apperr.BadRequest("File uploads are not configured")
	}

	grant, err := s.uploads.PresignAvatarUpload(ctx, userID, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return nil, err
	}

	return &transport.PresignedUploadResponse{
		URL:       grant.URL,
		FileKey:   grant.FileKey,
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

func toUserResponse(u *repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Compile-time checks that the production dependencies satisfy the
// service's interfaces.
var (
	_ UserStore = (*repository.Repo)(nil)
	_ Uploader  = (*storage.Service)(nil)
)
