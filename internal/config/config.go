// Package config reads process configuration from the environment. Values
// may also come from a local .env file, which never overrides variables that
// are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultRequestTimeout = 60 * time.Second
	apiKeyParamSuffix     = "/gemini-api-key"
)

type Config struct {
	// GeminiAPIKey takes precedence over the Parameter Store lookup.
	GeminiAPIKey  string
	GeminiBaseURL string
	// ParamPrefix enables the SSM credential source when non-empty.
	ParamPrefix string
	// IncidentTable enables the DynamoDB incident log when non-empty.
	IncidentTable string

	TextModel         string
	ImageModel        string
	IncludeDirectives bool
	RequestTimeout    time.Duration

	LogLevel slog.Level
}

// Load reads the environment after applying envFiles (default ".env"). A
// missing default file is ignored; a missing explicit file is an error.
// Unparseable numeric or boolean values fall back to their defaults.
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return Config{}, err
	}

	cfg := Config{
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:     strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		ParamPrefix:       strings.TrimRight(strings.TrimSpace(os.Getenv("PARAM_PREFIX")), "/"),
		IncidentTable:     strings.TrimSpace(os.Getenv("INCIDENT_TABLE")),
		TextModel:         strings.TrimSpace(os.Getenv("TEXT_MODEL")),
		ImageModel:        strings.TrimSpace(os.Getenv("IMAGE_MODEL")),
		IncludeDirectives: envBool("INCLUDE_DIRECTIVES", false),
		RequestTimeout:    envDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		LogLevel:          envLevel("LOG_LEVEL", slog.LevelInfo),
	}
	return cfg, nil
}

// APIKeyParam is the Parameter Store name holding {"token":"..."}, or ""
// when no prefix is configured.
func (c Config) APIKeyParam() string {
	if c.ParamPrefix == "" {
		return ""
	}
	return c.ParamPrefix + apiKeyParamSuffix
}

// NeedsAWS reports whether any AWS-backed component is enabled.
func (c Config) NeedsAWS() bool {
	return (c.GeminiAPIKey == "" && c.ParamPrefix != "") || c.IncidentTable != ""
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envDuration accepts Go durations ("45s") or whole seconds ("45").
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return def
		}
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envLevel(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return def
	}
	return l
}
