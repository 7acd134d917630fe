package application

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultRefreshInterval keeps the cache warm by refreshing shortly
	// before CacheTTL expires.
	DefaultRefreshInterval = CacheTTL - 10*time.Minute

	// minRetryDelay is the first retry delay after a failed refresh. It
	// doubles with each consecutive failure, up to the regular interval.
	minRetryDelay = time.Minute
)

// RefreshService keeps the account's cached catalog warm in the background so
// visitors rarely wait on GitHub.
type RefreshService struct {
	catalog   *CatalogService
	account   string
	interval  time.Duration
	logger    *slog.Logger
	refreshCh chan chan error
}

// NewRefreshService creates a RefreshService. A non-positive interval selects
// DefaultRefreshInterval.
func NewRefreshService(catalog *CatalogService, account string, interval time.Duration, logger *slog.Logger) *RefreshService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshService{
		catalog:   catalog,
		account:   account,
		interval:  interval,
		logger:    logger,
		refreshCh: make(chan chan error),
	}
}

// Start runs an immediate refresh, then refreshes on the interval, retrying
// failures sooner. It also serves RefreshNow requests. Start blocks until the
// context is canceled.
func (s *RefreshService) Start(ctx context.Context) {
	failures := 0
	if !s.refresh(ctx) {
		failures++
	}

	timer := time.NewTimer(nextRefreshDelay(s.interval, failures))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh service stopped")
			return
		case <-timer.C:
			if s.refresh(ctx) {
				failures = 0
			} else {
				failures++
			}
			timer.Reset(nextRefreshDelay(s.interval, failures))
		case done := <-s.refreshCh:
			_, err := s.catalog.Refresh(ctx, s.account)
			done <- err
		}
	}
}

// RefreshNow asks the running service for an immediate refresh and blocks
// until it completes or the context is canceled.
func (s *RefreshService) RefreshNow(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.refreshCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RefreshService) refresh(ctx context.Context) bool {
	stats, err := s.catalog.Refresh(ctx, s.account)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("catalog refresh failed", "account", s.account, "error", err)
		}
		return false
	}
	s.logger.Debug("catalog refreshed", "account", s.account, "repos", stats.RepoCount)
	return true
}

// nextRefreshDelay returns interval after a success and an exponential
// backoff starting at minRetryDelay after failures, capped at interval.
func nextRefreshDelay(interval time.Duration, failures int) time.Duration {
	if failures <= 0 {
		return interval
	}

	delay := minRetryDelay
	for i := 1; i < failures && delay < interval; i++ {
		delay *= 2
	}
	return min(delay, interval)
}
