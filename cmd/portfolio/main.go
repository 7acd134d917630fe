package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	httphandler "github.com/wian47/portfolio/internal/adapter/driving/http"
	webhandler "github.com/wian47/portfolio/internal/adapter/driving/web"
	"github.com/wian47/portfolio/internal/app"
	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/config"
	"github.com/wian47/portfolio/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel, false))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"cache_backend", cfg.CacheBackend,
		"github_account", cfg.GitHubAccount,
		"catalog_file", cfg.CatalogFile,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire cache, adapters and services.
	a, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing cache", "error", closeErr)
		}
	}()

	// 4. Register API and GUI routes on a shared mux.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(a.Catalog, a.Assistant, a.Contact, cfg.GitHubAccount, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(a.Catalog, a.Assistant, a.Contact, cfg.GitHubAccount, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 5. Keep the cache warm so visitors rarely wait on GitHub.
	if cfg.RefreshInterval >= 0 {
		refresher := application.NewRefreshService(a.Catalog, cfg.GitHubAccount, cfg.RefreshInterval, slog.Default())
		go refresher.Start(ctx)
	} else {
		slog.Info("background refresh disabled")
	}

	slog.Info("portfolio started", "listen_addr", cfg.ListenAddr)

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
