package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub_backend/internal/auth/repository"
	"learnhub_backend/internal/auth/token"
	"learnhub_backend/internal/auth/transport"
	"learnhub_backend/internal/events"
	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type testAuthConfig struct{}

func (testAuthConfig) GetJWTSecret() string              { return "test-secret" }
func (testAuthConfig) GetAccessTokenTTL() time.Duration  { return time.Hour }
func (testAuthConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

type fakeStore struct {
	usersByEmail map[string]*repository.User
	usersByID    map[uuid.UUID]*repository.User
	created      []*repository.User
	lastLogins   int
	newHash      string
	verified     []uuid.UUID
}

func newFakeStore(users ...*repository.User) *fakeStore {
	s := &fakeStore{
		usersByEmail: make(map[string]*repository.User),
		usersByID:    make(map[uuid.UUID]*repository.User),
	}
	for _, u := range users {
		s.usersByEmail[u.Email] = u
		s.usersByID[u.ID] = u
	}
	return s
}

func (s *fakeStore) CreateUser(_ context.Context, email, passwordHash, name, role string) (*repository.User, error) {
	u := &repository.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.usersByEmail[email] = u
	s.usersByID[u.ID] = u
	s.created = append(s.created, u)
	return u, nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	u, ok := s.usersByID[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *fakeStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := s.usersByEmail[email]
	return ok, nil
}

func (s *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.newHash = passwordHash
	return nil
}

func (s *fakeStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	u, ok := s.usersByID[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.IsVerified = true
	s.verified = append(s.verified, id)
	return nil
}

func (s *fakeStore) TouchLastLogin(context.Context, uuid.UUID) error {
	s.lastLogins++
	return nil
}

func (s *fakeStore) RecentEnrollments(context.Context, uuid.UUID, int) ([]repository.EnrollmentSummary, error) {
	return nil, nil
}

func (s *fakeStore) EnrollmentCounts(context.Context, uuid.UUID) (int64, int64, error) {
	return 0, 0, nil
}

type fakeBlacklist struct {
	entries map[string]time.Duration
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: make(map[string]time.Duration)}
}

func (b *fakeBlacklist) SetString(_ context.Context, key, _ string, ttl time.Duration) error {
	b.entries[key] = ttl
	return nil
}

func (b *fakeBlacklist) Exists(_ context.Context, key string) (bool, error) {
	_, ok := b.entries[key]
	return ok, nil
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

func newTestService(store *fakeStore, blacklist *fakeBlacklist, bus *captureBus) *Service {
	return New(store, token.NewIssuer(testAuthConfig{}), blacklist, bus, logger.New("development"))
}

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s := string(hash)
	return &s
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := &repository.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	svc := newTestService(newFakeStore(existing), newFakeBlacklist(), &captureBus{})

	_, err := svc.Register(context.Background(), transport.RegisterRequest{
		Email:    "Jane@Example.com",
		Password: "password123",
		Name:     "Jane",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterDefaultsRoleAndPublishesEvent(t *testing.T) {
	store := newFakeStore()
	bus := &captureBus{}
	svc := newTestService(store, newFakeBlacklist(), bus)

	resp, err := svc.Register(context.Background(), transport.RegisterRequest{
		Email:    "  New@Example.com ",
		Password: "password123",
		Name:     "New User",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if resp.User.Role != "STUDENT" {
		t.Fatalf("expected default role STUDENT, got %q", resp.User.Role)
	}
	if resp.User.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair on registration")
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	registered, ok := bus.published[0].(events.UserRegistered)
	if !ok {
		t.Fatalf("expected UserRegistered event, got %T", bus.published[0])
	}
	if registered.Email != "new@example.com" {
		t.Fatalf("event email = %q", registered.Email)
	}
	if registered.VerificationToken == "" {
		t.Fatal("expected a verification token on the registration event")
	}
}

func TestVerifyEmailMarksAccountVerified(t *testing.T) {
	store := newFakeStore()
	bus := &captureBus{}
	svc := newTestService(store, newFakeBlacklist(), bus)

	if _, err := svc.Register(context.Background(), transport.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
		Name:     "New User",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	registered := bus.published[0].(events.UserRegistered)
	if err := svc.VerifyEmail(context.Background(), registered.VerificationToken); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	user := store.usersByEmail["new@example.com"]
	if !user.IsVerified {
		t.Fatal("expected account to be verified")
	}

	// Verifying again is a no-op that still succeeds.
	if err := svc.VerifyEmail(context.Background(), registered.VerificationToken); err != nil {
		t.Fatalf("repeat verify: %v", err)
	}
}

func TestVerifyEmailRejectsAccessToken(t *testing.T) {
	user := &repository.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	store := newFakeStore(user)
	svc := newTestService(store, newFakeBlacklist(), &captureBus{})

	issuer := token.NewIssuer(testAuthConfig{})
	pair, err := issuer.IssuePair(token.Claims{UserID: user.ID, Email: user.Email, Role: "STUDENT"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), pair.AccessToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for access token, got %v", err)
	}
	if user.IsVerified {
		t.Fatal("account must stay unverified")
	}
}

func TestVerifyEmailRejectsGarbageToken(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeBlacklist(), &captureBus{})

	if err := svc.VerifyEmail(context.Background(), "not-a-jwt"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeBlacklist(), &captureBus{})

	issuer := token.NewIssuer(testAuthConfig{})
	verifyToken, err := issuer.IssueVerify(token.Claims{UserID: uuid.New(), Email: "gone@example.com", Role: "STUDENT"})
	if err != nil {
		t.Fatalf("issue verify: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), verifyToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for deleted account, got %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownEmailShareMessage(t *testing.T) {
	user := &repository.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		IsActive:     true,
	}
	svc := newTestService(newFakeStore(user), newFakeBlacklist(), &captureBus{})

	_, wrongPassErr := svc.Login(context.Background(), transport.LoginRequest{
		Email: "jane@example.com", Password: "wrong-password",
	})
	_, unknownErr := svc.Login(context.Background(), transport.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})

	for _, err := range []error{wrongPassErr, unknownErr} {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("expected app error, got %v", err)
		}
		if appErr.Kind != apperr.KindUnauthorized || appErr.Message != "Invalid email or password" {
			t.Fatalf("unexpected error: kind=%v message=%q", appErr.Kind, appErr.Message)
		}
	}
}

func TestLoginSocialOnlyAccount(t *testing.T) {
	user := &repository.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	svc := newTestService(newFakeStore(user), newFakeBlacklist(), &captureBus{})

	_, err := svc.Login(context.Background(), transport.LoginRequest{
		Email: "jane@example.com", Password: "password123",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "Please login with your social account" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	user := &repository.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		IsActive:     false,
	}
	svc := newTestService(newFakeStore(user), newFakeBlacklist(), &captureBus{})

	_, err := svc.Login(context.Background(), transport.LoginRequest{
		Email: "jane@example.com", Password: "correct-password",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "Account is deactivated. Please contact support" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoginTouchesLastLogin(t *testing.T) {
	user := &repository.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		IsActive:     true,
	}
	store := newFakeStore(user)
	svc := newTestService(store, newFakeBlacklist(), &captureBus{})

	if _, err := svc.Login(context.Background(), transport.LoginRequest{
		Email: "jane@example.com", Password: "correct-password",
	}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.lastLogins != 1 {
		t.Fatalf("expected last login touch, got %d", store.lastLogins)
	}
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	user := &repository.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	store := newFakeStore(user)
	blacklist := newFakeBlacklist()
	svc := newTestService(store, blacklist, &captureBus{})

	issuer := token.NewIssuer(testAuthConfig{})
	pair, err := issuer.IssuePair(token.Claims{UserID: user.ID, Email: user.Email, Role: "STUDENT"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("refresh before revocation: %v", err)
	}

	if err := svc.Logout(context.Background(), user.ID, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized after revocation, got %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	user := &repository.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	svc := newTestService(newFakeStore(user), newFakeBlacklist(), &captureBus{})

	issuer := token.NewIssuer(testAuthConfig{})
	pair, err := issuer.IssuePair(token.Claims{UserID: user.ID, Email: user.Email, Role: "STUDENT"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for access token on refresh path, got %v", err)
	}
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	user := &repository.User{ID: uuid.New(), Email: "jane@example.com", IsActive: false}
	svc := newTestService(newFakeStore(user), newFakeBlacklist(), &captureBus{})

	issuer := token.NewIssuer(testAuthConfig{})
	pair, err := issuer.IssuePair(token.Claims{UserID: user.ID, Email: user.Email, Role: "STUDENT"})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for deactivated user, got %v", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	user := &repository.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		IsActive:     true,
	}
	svc := newTestService(newFakeStore(user), newFakeBlacklist(), &captureBus{})

	err := svc.ChangePassword(context.Background(), user.ID, "wrong-password", "new-password-1")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if appErr.Message != "Current password is incorrect" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func TestChangePasswordStoresNewHash(t *testing.T) {
	user := &repository.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		IsActive:     true,
	}
	store := newFakeStore(user)
	svc := newTestService(store, newFakeBlacklist(), &captureBus{})

	if err := svc.ChangePassword(context.Background(), user.ID, "correct-password", "new-password-1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if store.newHash == "" {
		t.Fatal("expected new hash to be stored")
	}
	if bcrypt.CompareHashAndPassword([]byte(store.newHash), []byte("new-password-1")) != nil {
		t.Fatal("stored hash does not match new password")
	}
}

func TestLogoutRevokesForFullRefreshLifetime(t *testing.T) {
	blacklist := newFakeBlacklist()
	svc := newTestService(newFakeStore(), blacklist, &captureBus{})

	if err := svc.Logout(context.Background(), uuid.New(), "some-refresh-token"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	key := blacklistPrefix + token.Digest("some-refresh-token")
	ttl, ok := blacklist.entries[key]
	if !ok {
		t.Fatal("expected blacklist entry for token digest")
	}
	wantTTL := testAuthConfig{}.GetRefreshTokenTTL()
	if ttl != wantTTL {
		t.Fatalf("expected ttl %v, got %v", wantTTL, ttl)
	}
}
