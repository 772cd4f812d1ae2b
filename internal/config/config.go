package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devEncryptionKey = "dev-encryption-key-change-in-production"

var ErrInsecureEncryptionKey = errors.New("ENCRYPTION_KEY must be set in production environment")

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string

	// EncryptionKey is the server secret the stored Gemini API keys are sealed
	// under. Changing it makes every stored key unreadable.
	EncryptionKey string

	RedisURL       string
	AuthRateRPS    float64
	AuthRateBurst  int
	AuthRateLimit  int
	AuthRateWindow time.Duration

	CORSAllowedOrigins []string
	GeminiBaseURL      string
	GeminiTimeout      time.Duration
}

// IsProduction reports whether ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/fluxstudio?parseTime=true&loc=UTC"),
		EncryptionKey:      getEnv("ENCRYPTION_KEY", devEncryptionKey),
		RedisURL:           getEnv("REDIS_URL", ""),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		GeminiBaseURL:      strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
	}

	var err error
	if cfg.AuthRateRPS, err = getEnvFloat("AUTH_RATE_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateBurst, err = getEnvInt("AUTH_RATE_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateLimit, err = getEnvInt("AUTH_RATE_LIMIT", 30); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateWindow, err = getEnvDuration("AUTH_RATE_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.GeminiTimeout, err = getEnvDuration("GEMINI_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.IsProduction() && cfg.EncryptionKey == devEncryptionKey {
		return Config{}, ErrInsecureEncryptionKey
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
