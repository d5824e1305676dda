package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/luminastudio/studio-backend/pkg/auth"
	"github.com/luminastudio/studio-backend/pkg/auth/session"
	"github.com/luminastudio/studio-backend/pkg/config"
	"github.com/luminastudio/studio-backend/pkg/db/models"
	"github.com/luminastudio/studio-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "studio-test",
	ExpirationMinutes: 15,
}

type stubUsersRepo struct {
	user        *models.User
	findErr     error
	touchedAt   *time.Time
	touchErr    error
	lastEmail   string
	lastFoundID uuid.UUID
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.lastEmail = email
	return s.user, s.findErr
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.lastFoundID = id
	return s.user, s.findErr
}

func (s *stubUsersRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.touchedAt = &at
	return s.touchErr
}

type stubSessions struct {
	generatedFor string
	refresh      string
	generateErr  error

	rotatedFrom  string
	newAccessID  string
	newRefresh   string
	rotateErr    error

	revokedID string
	revokeErr error
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	s.generatedFor = accessID
	return s.refresh, s.generateErr
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.rotatedFrom = oldAccessID
	return s.newAccessID, s.newRefresh, s.rotateErr
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revokedID = accessID
	return s.revokeErr
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "photographer@luminastudio.io",
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t, "correct horse")
	users := &stubUsersRepo{user: user}
	sessions := &stubSessions{refresh: "refresh-token"}
	svc, err := NewService(users, sessions, testJWT)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	pair, err := svc.Login(context.Background(), " photographer@luminastudio.io ", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token passed through, got %q", pair.RefreshToken)
	}
	if users.touchedAt == nil {
		t.Fatal("expected last login touched")
	}

	claims, err := pkgauth.ParseAccessToken(testJWT, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id in claims, got %v", claims.UserID)
	}
	if claims.ID != sessions.generatedFor {
		t.Fatalf("token jti %q must match the session access id %q", claims.ID, sessions.generatedFor)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := &stubUsersRepo{user: testUser(t, "right")}
	svc, _ := NewService(users, &stubSessions{}, testJWT)

	_, err := svc.Login(context.Background(), "photographer@luminastudio.io", "wrong")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	// Unknown email and bad password answer identically.
	users := &stubUsersRepo{findErr: gorm.ErrRecordNotFound}
	svc, _ := NewService(users, &stubSessions{}, testJWT)

	_, err := svc.Login(context.Background(), "nobody@luminastudio.io", "whatever")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != "invalid credentials" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginValidation(t *testing.T) {
	svc, _ := NewService(&stubUsersRepo{}, &stubSessions{}, testJWT)

	_, err := svc.Login(context.Background(), "", "pw")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginSessionFailure(t *testing.T) {
	users := &stubUsersRepo{user: testUser(t, "pw")}
	sessions := &stubSessions{generateErr: errors.New("redis down")}
	svc, _ := NewService(users, sessions, testJWT)

	_, err := svc.Login(context.Background(), "photographer@luminastudio.io", "pw")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := testUser(t, "pw")
	oldAccessID := session.NewAccessID()
	access, err := pkgauth.MintAccessToken(testJWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    oldAccessID,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	users := &stubUsersRepo{user: user}
	sessions := &stubSessions{newAccessID: session.NewAccessID(), newRefresh: "next-refresh"}
	svc, _ := NewService(users, sessions, testJWT)

	pair, err := svc.Refresh(context.Background(), access, "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sessions.rotatedFrom != oldAccessID {
		t.Fatalf("expected rotation keyed by old jti %q, got %q", oldAccessID, sessions.rotatedFrom)
	}
	if pair.RefreshToken != "next-refresh" {
		t.Fatalf("expected rotated refresh token, got %q", pair.RefreshToken)
	}

	claims, err := pkgauth.ParseAccessToken(testJWT, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse new token: %v", err)
	}
	if claims.ID != sessions.newAccessID {
		t.Fatalf("new token jti %q must match the rotated access id %q", claims.ID, sessions.newAccessID)
	}
}

func TestRefreshInvalidAccessToken(t *testing.T) {
	svc, _ := NewService(&stubUsersRepo{}, &stubSessions{}, testJWT)

	_, err := svc.Refresh(context.Background(), "garbage", "refresh")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshInvalidRefreshToken(t *testing.T) {
	user := testUser(t, "pw")
	access, _ := pkgauth.MintAccessToken(testJWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    session.NewAccessID(),
	})

	sessions := &stubSessions{rotateErr: session.ErrInvalidRefreshToken}
	svc, _ := NewService(&stubUsersRepo{user: user}, sessions, testJWT)

	_, err := svc.Refresh(context.Background(), access, "stolen-or-stale")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	sessions := &stubSessions{}
	svc, _ := NewService(&stubUsersRepo{}, sessions, testJWT)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revokedID != "access-id" {
		t.Fatalf("expected revoke called, got %q", sessions.revokedID)
	}

	err := svc.Logout(context.Background(), "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for empty access id, got %v", err)
	}
}
