package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fluxstudio/fluxstudio-go/internal/crypto"
	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/repository"
)

const (
	DefaultModel       = "gemini-1.5-flash"
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.4

	MinMaxTokens   = 100
	MaxMaxTokens   = 8000
	MinTemperature = 0.0
	MaxTemperature = 2.0

	apiKeyPrefix = "AIza"
)

// SettingsStore persists the per-user settings row.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*model.Settings, error)
	Upsert(ctx context.Context, s *model.Settings) error
}

// SettingsService is the vault for the user's Gemini API key and generation
// preferences. The plaintext key never leaves this type except through Credentials.
type SettingsService struct {
	store  SettingsStore
	secret string
}

// NewSettingsService creates a new SettingsService keyed by the server secret.
func NewSettingsService(store SettingsStore, secret string) *SettingsService {
	return &SettingsService{store: store, secret: secret}
}

func defaultSettings(userID string) *model.Settings {
	return &model.Settings{
		UserID:      userID,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// load returns the user's row, creating it with defaults on first access.
func (s *SettingsService) load(ctx context.Context, userID string) (*model.Settings, error) {
	settings, err := s.store.Get(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrSettingsNotFound) {
		return nil, err
	}

	settings = defaultSettings(userID)
	if err := s.store.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Get returns the masked settings view for userID.
func (s *SettingsService) Get(ctx context.Context, userID string) (model.SettingsView, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return model.SettingsView{}, internalError("Failed to fetch settings", err)
	}
	return s.view(settings), nil
}

// Update validates every supplied field before changing anything, then writes
// the whole row at once.
func (s *SettingsService) Update(ctx context.Context, userID string, req model.SettingsUpdate) (model.SettingsView, error) {
	var apiKey *string
	if req.GeminiAPIKey != nil {
		trimmed := strings.TrimSpace(*req.GeminiAPIKey)
		if trimmed != "" && !strings.HasPrefix(trimmed, apiKeyPrefix) {
			return model.SettingsView{}, ErrInvalidAPIKey
		}
		apiKey = &trimmed
	}
	if req.Model != nil && strings.TrimSpace(*req.Model) == "" {
		return model.SettingsView{}, ErrModelRequired
	}
	if req.MaxTokens != nil && (*req.MaxTokens < MinMaxTokens || *req.MaxTokens > MaxMaxTokens) {
		return model.SettingsView{}, ErrMaxTokensRange
	}
	if req.Temperature != nil && (*req.Temperature < MinTemperature || *req.Temperature > MaxTemperature) {
		return model.SettingsView{}, ErrTemperatureRange
	}

	settings, err := s.load(ctx, userID)
	if err != nil {
		return model.SettingsView{}, internalError("Failed to update settings", err)
	}

	if apiKey != nil {
		if *apiKey == "" {
			settings.APIKeyCiphertext = nil
			settings.APIKeyIV = nil
		} else {
			sealed, err := crypto.Encrypt(*apiKey, s.secret)
			if err != nil {
				return model.SettingsView{}, internalError("Failed to update settings", err)
			}
			settings.APIKeyCiphertext = &sealed.Ciphertext
			settings.APIKeyIV = &sealed.IV
		}
	}
	if req.Model != nil {
		settings.Model = strings.TrimSpace(*req.Model)
	}
	if req.MaxTokens != nil {
		settings.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		settings.Temperature = *req.Temperature
	}

	if err := s.store.Upsert(ctx, settings); err != nil {
		return model.SettingsView{}, internalError("Failed to update settings", err)
	}

	slog.Info("settings updated", "user_id", userID, "api_key_changed", apiKey != nil, "has_api_key", settings.HasEncryptedKey())
	return s.view(settings), nil
}

// Credentials decrypts the stored key for use against the Gemini API. A
// missing key and a key that no longer decrypts look the same to callers.
func (s *SettingsService) Credentials(ctx context.Context, userID string) (model.GeminiCredentials, error) {
	settings, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return model.GeminiCredentials{}, ErrAPIKeyNotConfigured
		}
		return model.GeminiCredentials{}, internalError("Failed to load settings", err)
	}
	if !settings.HasEncryptedKey() {
		return model.GeminiCredentials{}, ErrAPIKeyNotConfigured
	}

	key, err := crypto.Decrypt(*settings.APIKeyCiphertext, *settings.APIKeyIV, s.secret)
	if err != nil {
		slog.Warn("stored api key could not be decrypted", "user_id", userID)
		return model.GeminiCredentials{}, ErrAPIKeyNotConfigured
	}

	creds := model.GeminiCredentials{
		APIKey:      key,
		Model:       settings.Model,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}
	if creds.Model == "" {
		creds.Model = DefaultModel
	}
	return creds, nil
}

// APIKey returns only the decrypted key.
func (s *SettingsService) APIKey(ctx context.Context, userID string) (string, error) {
	creds, err := s.Credentials(ctx, userID)
	if err != nil {
		return "", err
	}
	return creds.APIKey, nil
}

// view builds the client-facing settings. Decryption here only feeds Mask;
// a key that fails to decrypt is reported as absent rather than as an error,
// so a rotated server secret degrades to "please re-enter your key".
func (s *SettingsService) view(settings *model.Settings) model.SettingsView {
	v := model.SettingsView{
		Model:       settings.Model,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}

	if settings.HasEncryptedKey() {
		plain, err := crypto.Decrypt(*settings.APIKeyCiphertext, *settings.APIKeyIV, s.secret)
		if err != nil {
			slog.Warn("stored api key could not be decrypted", "user_id", settings.UserID)
		} else {
			masked := crypto.Mask(plain)
			v.GeminiAPIKeyMasked = &masked
			v.HasAPIKey = true
		}
	}

	return v
}
