package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fluxstudio/fluxstudio-go/internal/model"
)

var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRepository handles the per-user api_settings row.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// upsertSettingsQuery writes the whole row, so the key ciphertext and IV always change together.
const upsertSettingsQuery = `
	INSERT INTO api_settings (user_id, gemini_api_key_encrypted, gemini_api_key_iv, model, max_tokens, temperature)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		gemini_api_key_encrypted = VALUES(gemini_api_key_encrypted),
		gemini_api_key_iv        = VALUES(gemini_api_key_iv),
		model                    = VALUES(model),
		max_tokens               = VALUES(max_tokens),
		temperature              = VALUES(temperature),
		updated_at               = CURRENT_TIMESTAMP(6)`

// Get retrieves the settings row for a user.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.Settings, error) {
	query := `SELECT user_id, gemini_api_key_encrypted, gemini_api_key_iv, model, max_tokens, temperature, updated_at
		FROM api_settings WHERE user_id = ?`

	var (
		s          model.Settings
		ciphertext sql.NullString
		iv         sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &ciphertext, &iv, &s.Model, &s.MaxTokens, &s.Temperature, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("querying settings: %w", err)
	}

	// A half-written pair is unusable; surface it as no key at all.
	if ciphertext.Valid && iv.Valid {
		s.APIKeyCiphertext = stringPtr(ciphertext)
		s.APIKeyIV = stringPtr(iv)
	}

	return &s, nil
}

// Upsert inserts or replaces the settings row for s.UserID.
func (r *SettingsRepository) Upsert(ctx context.Context, s *model.Settings) error {
	var ciphertext, iv sql.NullString
	if s.APIKeyCiphertext != nil && s.APIKeyIV != nil {
		ciphertext = sql.NullString{String: *s.APIKeyCiphertext, Valid: true}
		iv = sql.NullString{String: *s.APIKeyIV, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, upsertSettingsQuery,
		s.UserID,
		ciphertext,
		iv,
		s.Model,
		s.MaxTokens,
		s.Temperature,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("upserting settings: %w", err)
	}

	return nil
}
