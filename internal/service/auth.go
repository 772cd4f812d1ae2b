package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fluxstudio/fluxstudio-go/internal/crypto"
	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/repository"
)

// SessionTTL is the fixed lifetime of a session. Sessions are not extended on use.
const SessionTTL = 7 * 24 * time.Hour

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore persists hashed session tokens.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	Lookup(ctx context.Context, tokenHash string, now time.Time) (*model.SessionWithUser, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) (int64, error)
}

// AuthService handles registration, login and session resolution.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

// WithClock replaces the service clock. Used by tests to pin expiry boundaries.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates a new user account and signs it in.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, meta model.ClientMeta) (model.IssuedSession, error) {
	email := strings.ToLower(req.Email)
	if err := ValidateEmail(email); err != nil {
		return model.IssuedSession{}, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return model.IssuedSession{}, err
	}

	// The unique index still decides concurrent registrations; this read
	// only gives the common case a clean conflict before hashing.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.IssuedSession{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.IssuedSession{}, internalError("Registration failed. Please try again.", err)
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.IssuedSession{}, internalError("Registration failed. Please try again.", err)
	}

	user := &model.User{
		ID:           crypto.GenerateID(),
		Email:        email,
		PasswordHash: hash.Hash,
		PasswordSalt: hash.Salt,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.IssuedSession{}, ErrEmailTaken
		}
		return model.IssuedSession{}, internalError("Registration failed. Please try again.", err)
	}

	issued, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return model.IssuedSession{}, internalError("Registration failed. Please try again.", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return issued, nil
}

// Login verifies credentials and mints a new session. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, meta model.ClientMeta) (model.IssuedSession, error) {
	if req.Email == "" || req.Password == "" {
		return model.IssuedSession{}, ErrCredentialsRequired
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.IssuedSession{}, ErrInvalidCredentials
		}
		return model.IssuedSession{}, internalError("Login failed. Please try again.", err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		return model.IssuedSession{}, internalError("Login failed. Please try again.", err)
	}
	if !match {
		return model.IssuedSession{}, ErrInvalidCredentials
	}

	if n, err := s.sessions.DeleteExpiredForUser(ctx, user.ID, s.now()); err != nil {
		slog.Warn("purging expired sessions failed", "user_id", user.ID, "error", err)
	} else if n > 0 {
		slog.Debug("purged expired sessions", "user_id", user.ID, "count", n)
	}

	issued, err := s.issueSession(ctx, user, meta)
	if err != nil {
		return model.IssuedSession{}, internalError("Login failed. Please try again.", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return issued, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *model.User, meta model.ClientMeta) (model.IssuedSession, error) {
	token := crypto.GenerateSessionToken()
	now := s.now().UTC()

	session := &model.Session{
		ID:        crypto.GenerateID(),
		UserID:    user.ID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return model.IssuedSession{}, err
	}

	return model.IssuedSession{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      model.UserResponse{ID: user.ID, Email: user.Email},
	}, nil
}

// Authenticate resolves a raw session token to an identity. Expired and
// unknown tokens both yield ErrSessionInvalid.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrAuthRequired
	}

	res, err := s.sessions.Lookup(ctx, crypto.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return model.Identity{}, ErrSessionInvalid
		}
		return model.Identity{}, internalError("Authentication failed", err)
	}

	return model.Identity{
		UserID:    res.User.ID,
		Email:     res.User.Email,
		SessionID: res.Session.ID,
	}, nil
}

// Logout deletes the session for token. An empty or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, crypto.HashToken(token)); err != nil {
		return internalError("Logout failed", err)
	}
	return nil
}

// LogoutAll deletes every session owned by userID.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return internalError("Logout failed", err)
	}
	slog.Info("all sessions revoked", "user_id", userID)
	return nil
}
