// Package service implements the authentication flows.
package service

import (
	"context"
	"strings"
	"time"

	"learnhub_backend/internal/auth/repository"
	"learnhub_backend/internal/auth/token"
	"learnhub_backend/internal/auth/transport"
	"learnhub_backend/internal/events"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/cache"
	"learnhub_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgSocialAccount      = "Please login with your social account"
	msgDeactivated        = "Account is deactivated. Please contact support"

	blacklistPrefix = "blacklist:"

	recentEnrollmentLimit = 5
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, name, role string) (*repository.User, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	RecentEnrollments(ctx context.Context, userID uuid.UUID, limit int) ([]repository.EnrollmentSummary, error)
	EnrollmentCounts(ctx context.Context, userID uuid.UUID) (total, completed int64, err error)
}

// Blacklist is the token revocation surface, backed by Redis.
type Blacklist interface {
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Service implements registration, login, token refresh, and password
// management.
type Service struct {
	store     UserStore
	tokens    *token.Issuer
	blacklist Blacklist
	bus       events.Bus
	log       *logger.Logger
}

// New creates the auth service.
func New(store UserStore, tokens *token.Issuer, blacklist Blacklist, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		blacklist: blacklist,
		bus:       bus,
		log:       log,
	}
}

// Register creates a new account and issues a token pair.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = "STUDENT"
	}

	user, err := s.store.CreateUser(ctx, email, string(hash), strings.TrimSpace(req.Name), role)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	verifyToken, err := s.tokens.IssueVerify(token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to issue verification token", err)
	}

	s.log.AuthEvent("register", email, true, "")
	if s.bus != nil {
		s.bus.Publish(ctx, events.UserRegistered{
			BaseEvent:         events.NewBaseEvent(),
			UserID:            user.ID,
			Email:             user.Email,
			Name:              user.Name,
			Role:              user.Role,
			VerificationToken: verifyToken,
		})
	}

	return &transport.AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		s.log.AuthEvent("login", email, false, "social-only account")
		return nil, apperr.Unauthorized(msgSocialAccount)
	}
	if !user.IsActive {
		s.log.AuthEvent("login", email, false, "deactivated")
		return nil, apperr.Unauthorized(msgDeactivated)
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		s.log.AuthEvent("login", email, false, "password mismatch")
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.AuthEvent("login", email, true, "")
	return &transport.AuthResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh verifies a refresh token, checks the revocation list, and issues
// a fresh pair. The presented refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*transport.TokenResponse, error) {
	claims, err := s.tokens.ParseRefresh(rawToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.Exists(ctx, blacklistPrefix+token.Digest(rawToken))
	if err != nil {
		s.log.CacheError("exists", blacklistPrefix, err)
	} else if revoked {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized(msgDeactivated)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	return &transport.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// VerifyEmail validates an emailed verification token and marks the account
// verified. The token is single-purpose; access and refresh tokens are
// rejected.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.ParseVerify(rawToken)
	if err != nil {
		return err
	}

	if err := s.store.MarkVerified(ctx, claims.UserID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Unauthorized("Invalid token")
		}
		return err
	}

	s.log.AuthEvent("verify_email", claims.Email, true, "")
	return nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil {
		return apperr.NotFound("User not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(current)) != nil {
		return apperr.BadRequest("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	s.log.AuthEvent("change_password", user.Email, true, "")
	return nil
}

// Logout revokes the presented refresh token for its full remaining
// lifetime.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	key := blacklistPrefix + token.Digest(refreshToken)
	if err := s.blacklist.SetString(ctx, key, "1", s.tokens.RefreshTTL()); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to revoke token", err)
	}
	s.log.Info("user logged out", "user_id", userID.String())
	return nil
}

// CurrentUser returns the sanitized account plus recent enrollment context.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*transport.CurrentUserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.RecentEnrollments(ctx, userID, recentEnrollmentLimit)
	if err != nil {
		return nil, err
	}
	total, completed, err := s.store.EnrollmentCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]transport.EnrollmentSummary, 0, len(recent))
	for _, e := range recent {
		summaries = append(summaries, transport.EnrollmentSummary{
			CourseID:    e.CourseID.String(),
			CourseTitle: e.CourseTitle,
			CourseSlug:  e.CourseSlug,
			Progress:    e.Progress,
			Status:      e.Status,
			EnrolledAt:  e.EnrolledAt,
		})
	}

	return &transport.CurrentUserResponse{
		User:                 toUserResponse(user),
		RecentEnrollments:    summaries,
		EnrollmentCount:      total,
		CompletedEnrollments: completed,
	}, nil
}

func (s *Service) issuePair(user *repository.User) (token.Pair, error) {
	pair, err := s.tokens.IssuePair(token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return token.Pair{}, apperr.Wrap(apperr.KindInternal, "failed to issue tokens", err)
	}
	return pair, nil
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
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Ensure the concrete repository satisfies the store interface.
var _ UserStore = (*repository.Repository)(nil)

// Ensure the cache wrapper satisfies the blacklist interface.
var _ Blacklist = (*cache.Cache)(nil)
