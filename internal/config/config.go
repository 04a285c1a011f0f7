// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Load when DATA_GOV_API_KEY is unset.
var ErrMissingAPIKey = errors.New("DATA_GOV_API_KEY is required; get a key at https://data.gov.in")

// Config holds everything the server needs to start.
type Config struct {
	Port            string
	APIKey          string
	BaseURL         string
	ResourceID      string
	UpstreamTimeout time.Duration // zero leaves the transport default in place
	LogLevel        slog.Level
	LogFormat       string
	TLSCertFile     string
	TLSKeyFile      string
}

// LoadDotEnv loads the given .env files (or ./.env) into the environment.
// Variables already set take precedence. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads Config from the environment, failing if a required value is absent or malformed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		APIKey:      strings.TrimSpace(os.Getenv("DATA_GOV_API_KEY")),
		BaseURL:     os.Getenv("DATA_GOV_BASE_URL"),
		ResourceID:  os.Getenv("DATA_GOV_RESOURCE_ID"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
		TLSCertFile: os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:  os.Getenv("TLS_KEY_FILE"),
	}
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("UPSTREAM_TIMEOUT %q: want a duration like 15s", v)
		}
		cfg.UpstreamTimeout = d
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT %q: want text or json", cfg.LogFormat)
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return Config{}, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return cfg, nil
}

// TLS reports whether the server should terminate TLS itself.
func (c Config) TLS() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

// Logger builds the process logger described by LogLevel and LogFormat.
func (c Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
