// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Timezone database for minimal container images.

	"github.com/joho/godotenv"

	"github.com/wian47/portfolio/internal/application"
)

// Cache backends accepted by PORTFOLIO_CACHE_BACKEND.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubAccount string
	GitHubToken   string
	ListenAddr    string
	DBPath        string
	CacheBackend  string
	CatalogFile   string
	DateLayout    string
	Location      *time.Location
	LogLevel      string

	// RefreshInterval is how often the catalog is refreshed in the
	// background. Zero selects the service default; negative disables it.
	RefreshInterval time.Duration

	AssistantAPIKey  string
	AssistantBaseURL string
	AssistantModel   string

	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSPublicKey  string
}

// HasAssistant reports whether a language model API key is configured.
func (c *Config) HasAssistant() bool {
	return c.AssistantAPIKey != ""
}

// HasContactRelay reports whether every EmailJS identifier is configured.
func (c *Config) HasContactRelay() bool {
	return c.EmailJSServiceID != "" && c.EmailJSTemplateID != "" && c.EmailJSPublicKey != ""
}

// CatalogTables returns the resolver tables: the built-in defaults, overlaid
// with PORTFOLIO_CATALOG_FILE when it is set.
func (c *Config) CatalogTables() (application.CatalogTables, error) {
	if c.CatalogFile == "" {
		return application.DefaultCatalogTables(), nil
	}

	data, err := os.ReadFile(c.CatalogFile)
	if err != nil {
		return application.CatalogTables{}, fmt.Errorf("reading catalog file: %w", err)
	}

	tables, err := application.ParseCatalogTables(data)
	if err != nil {
		return application.CatalogTables{}, fmt.Errorf("catalog file %s: %w", c.CatalogFile, err)
	}
	return tables, nil
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment take precedence.
// PORTFOLIO_GITHUB_ACCOUNT is required. Optional variables with defaults:
// PORTFOLIO_LISTEN_ADDR (127.0.0.1:8080), PORTFOLIO_DB_PATH (portfolio.db),
// PORTFOLIO_CACHE_BACKEND (sqlite), PORTFOLIO_DATE_LAYOUT (1/2/2006),
// PORTFOLIO_TIMEZONE (UTC), PORTFOLIO_LOG_LEVEL (info),
// PORTFOLIO_REFRESH_INTERVAL (50m; negative disables background refresh).
func Load() (*Config, error) {
	_ = godotenv.Load()

	account := strings.TrimSpace(os.Getenv("PORTFOLIO_GITHUB_ACCOUNT"))
	if account == "" {
		return nil, errors.New("PORTFOLIO_GITHUB_ACCOUNT is required")
	}

	backend := strings.ToLower(envOr("PORTFOLIO_CACHE_BACKEND", CacheBackendSQLite))
	if backend != CacheBackendSQLite && backend != CacheBackendMemory {
		return nil, fmt.Errorf("PORTFOLIO_CACHE_BACKEND must be %q or %q, got %q", CacheBackendSQLite, CacheBackendMemory, backend)
	}

	tz := envOr("PORTFOLIO_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("PORTFOLIO_TIMEZONE has invalid location %q: %w", tz, err)
	}

	var refresh time.Duration
	if raw := os.Getenv("PORTFOLIO_REFRESH_INTERVAL"); raw != "" {
		refresh, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("PORTFOLIO_REFRESH_INTERVAL has invalid duration %q: %w", raw, err)
		}
	}

	return &Config{
		GitHubAccount: account,
		GitHubToken:   os.Getenv("PORTFOLIO_GITHUB_TOKEN"),
		ListenAddr:    envOr("PORTFOLIO_LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:        envOr("PORTFOLIO_DB_PATH", "portfolio.db"),
		CacheBackend:  backend,
		CatalogFile:   os.Getenv("PORTFOLIO_CATALOG_FILE"),
		DateLayout:    envOr("PORTFOLIO_DATE_LAYOUT", application.DefaultDateLayout),
		Location:      loc,
		LogLevel:      envOr("PORTFOLIO_LOG_LEVEL", "info"),

		RefreshInterval: refresh,

		AssistantAPIKey:  os.Getenv("PORTFOLIO_ASSISTANT_API_KEY"),
		AssistantBaseURL: os.Getenv("PORTFOLIO_ASSISTANT_BASE_URL"),
		AssistantModel:   os.Getenv("PORTFOLIO_ASSISTANT_MODEL"),

		EmailJSServiceID:  os.Getenv("PORTFOLIO_EMAILJS_SERVICE_ID"),
		EmailJSTemplateID: os.Getenv("PORTFOLIO_EMAILJS_TEMPLATE_ID"),
		EmailJSPublicKey:  os.Getenv("PORTFOLIO_EMAILJS_PUBLIC_KEY"),
	}, nil
}

// envOr returns the value of key, or fallback when it is unset or empty.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
