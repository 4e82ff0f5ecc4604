/*
Package config builds the service configuration once at process start.
Values come from the environment (optionally seeded from a .env file) and are
passed by reference to every component that needs them.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// ErrMissingRequired is returned by Load when a mandatory key is absent.
var ErrMissingRequired = errors.New("missing required configuration")

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds everything the service reads from its environment.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int

	// BackendURL is the base URL of the upstream PantauSiKecil backend API.
	BackendURL string

	// BackendTimeout bounds every single upstream call.
	BackendTimeout time.Duration

	// GeminiAPIKey authenticates calls to the Gemini API.
	GeminiAPIKey string

	// GeminiBaseURL is the API root, overridable for tests and proxies.
	GeminiBaseURL string

	// GeminiModel names the model used for every generation.
	GeminiModel string

	// GeminiTimeout bounds one generateContent call.
	GeminiTimeout time.Duration

	// Location decides what "today" means for date-keyed upstream calls.
	Location *time.Location

	LogLevel  string
	LogFormat string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads the configuration and fails fast when GEMINI_API_KEY or
// BACKEND_URL is missing.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8000)
	v.SetDefault("BACKEND_TIMEOUT", 10*time.Second)
	v.SetDefault("GEMINI_BASE_URL", defaultGeminiBaseURL)
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_TIMEOUT", 30*time.Second)
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("HTTP_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 60*time.Second)
	v.SetDefault("HTTP_IDLE_TIMEOUT", time.Minute)

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		BackendURL:     strings.TrimRight(strings.TrimSpace(v.GetString("BACKEND_URL")), "/"),
		BackendTimeout: v.GetDuration("BACKEND_TIMEOUT"),
		GeminiAPIKey:   strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiBaseURL:  strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
		GeminiModel:    v.GetString("GEMINI_MODEL"),
		GeminiTimeout:  v.GetDuration("GEMINI_TIMEOUT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		ReadTimeout:    v.GetDuration("HTTP_READ_TIMEOUT"),
		WriteTimeout:   v.GetDuration("HTTP_WRITE_TIMEOUT"),
		IdleTimeout:    v.GetDuration("HTTP_IDLE_TIMEOUT"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not found in environment", ErrMissingRequired)
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("%w: BACKEND_URL not found in environment", ErrMissingRequired)
	}

	if cfg.Port <= 0 {
		cfg.Port = 8000
	}

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Addr returns the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
