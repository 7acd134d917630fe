// Package app wires configuration, driven adapters and application services
// into the object graph shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	assistantadapter "github.com/wian47/portfolio/internal/adapter/driven/assistant"
	"github.com/wian47/portfolio/internal/adapter/driven/emailjs"
	githubadapter "github.com/wian47/portfolio/internal/adapter/driven/github"
	memoryadapter "github.com/wian47/portfolio/internal/adapter/driven/memory"
	sqliteadapter "github.com/wian47/portfolio/internal/adapter/driven/sqlite"
	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/config"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Cache is a CacheStore that can also be emptied wholesale.
type Cache interface {
	driven.CacheStore
	Clear(ctx context.Context) (int64, error)
}

// App holds the wired services.
type App struct {
	Catalog   *application.CatalogService
	Assistant *application.AssistantService
	Contact   *application.ContactService
	Cache     Cache

	db *sqliteadapter.DB
}

// New builds the object graph for cfg. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tables, err := cfg.CatalogTables()
	if err != nil {
		return nil, err
	}

	a := &App{}

	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		a.Cache = memoryadapter.NewCacheStore()
		logger.Info("cache backend selected", "backend", cfg.CacheBackend)
	default:
		// Dual reader/writer with WAL mode.
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrating cache database: %w", err)
		}
		a.db = db
		a.Cache = sqliteadapter.NewCacheStore(db)
		logger.Info("cache backend selected", "backend", cfg.CacheBackend, "path", cfg.DBPath)
	}

	lister := githubadapter.NewClient(cfg.GitHubToken)
	if cfg.GitHubToken == "" {
		logger.Info("no github token configured, using unauthenticated rate limits")
	}

	normalizer := application.NewNormalizer(application.NewResolver(tables), cfg.DateLayout, cfg.Location)
	a.Catalog = application.NewCatalogService(lister, a.Cache, normalizer, logger)

	var assistant driven.Assistant
	if cfg.HasAssistant() {
		assistant = assistantadapter.NewClient(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantModel, "")
	} else {
		logger.Info("no assistant api key configured, chat answers offline")
	}
	a.Assistant = application.NewAssistantService(assistant, logger)

	var relay driven.ContactRelay
	if cfg.HasContactRelay() {
		relay = emailjs.NewRelay(emailjs.Config{
			ServiceID:  cfg.EmailJSServiceID,
			TemplateID: cfg.EmailJSTemplateID,
			PublicKey:  cfg.EmailJSPublicKey,
		})
	} else {
		logger.Info("emailjs not configured, contact form disabled")
	}
	a.Contact = application.NewContactService(relay, logger)

	return a, nil
}

// Close releases the cache database, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
