package model

import "time"

// Settings is the per-user vault row. APIKeyCiphertext and APIKeyIV are
// either both set or both nil.
type Settings struct {
	UserID           string
	APIKeyCiphertext *string
	APIKeyIV         *string
	Model            string
	MaxTokens        int
	Temperature      float64
	UpdatedAt        time.Time
}

// HasEncryptedKey reports whether a ciphertext/IV pair is stored.
func (s Settings) HasEncryptedKey() bool {
	return s.APIKeyCiphertext != nil && s.APIKeyIV != nil &&
		*s.APIKeyCiphertext != "" && *s.APIKeyIV != ""
}

// SettingsView is what clients see. GeminiAPIKey is always null.
type SettingsView struct {
	GeminiAPIKey       *string `json:"geminiApiKey"`
	GeminiAPIKeyMasked *string `json:"geminiApiKeyMasked"`
	Model              string  `json:"model"`
	MaxTokens          int     `json:"maxTokens"`
	Temperature        float64 `json:"temperature"`
	HasAPIKey          bool    `json:"hasApiKey"`
}

// SettingsUpdate is a partial update. Nil fields are left unchanged; an
// empty GeminiAPIKey clears the stored key.
type SettingsUpdate struct {
	GeminiAPIKey *string  `json:"geminiApiKey"`
	Model        *string  `json:"model"`
	MaxTokens    *int     `json:"maxTokens"`
	Temperature  *float64 `json:"temperature"`
}

// GeminiCredentials is the decrypted key plus the generation defaults the
// passthrough applies when a request leaves them unset.
type GeminiCredentials struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}
