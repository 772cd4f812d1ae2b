package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fluxstudio/fluxstudio-go/internal/model"
)

var (
	// ErrSessionNotFound covers both unknown and expired token hashes.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionConflict is returned when a session id or token hash collides,
	// or when the owning user does not exist.
	ErrSessionConflict = errors.New("session conflict")
)

// SessionRepository is the MySQL-backed session store.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := `INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.ExpiresAt.UTC(),
		s.CreatedAt.UTC(),
		nullString(s.IPAddress),
		nullString(s.UserAgent),
	)
	if err != nil {
		if isDuplicateEntryError(err) || isForeignKeyError(err) {
			return ErrSessionConflict
		}
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// Lookup resolves a token hash to its session and owning user. Sessions whose
// expires_at is not after now are treated exactly like missing ones.
func (r *SessionRepository) Lookup(ctx context.Context, tokenHash string, now time.Time) (*model.SessionWithUser, error) {
	query := `SELECT s.id, s.user_id, s.token_hash, s.expires_at, s.created_at,
			u.id, u.email, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ? AND s.expires_at > ?`

	var res model.SessionWithUser
	err := r.db.QueryRowContext(ctx, query, tokenHash, now.UTC()).Scan(
		&res.Session.ID, &res.Session.UserID, &res.Session.TokenHash, &res.Session.ExpiresAt, &res.Session.CreatedAt,
		&res.User.ID, &res.User.Email, &res.User.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	return &res, nil
}

// Delete removes the session with the given token hash. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every session owned by userID.
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}
	return nil
}

// DeleteExpiredForUser purges the user's sessions that expired at or before now.
func (r *SessionRepository) DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ? AND expires_at <= ?`, userID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging expired sessions: %w", err)
	}
	return result.RowsAffected()
}
