// Package application contains use-case orchestration services.
package application

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

const (
	// CacheTTL is how long a cached repository list or stats snapshot is served.
	CacheTTL = time.Hour

	// FetchTimeout bounds a single repository listing; exceeding it is a
	// FailureTimeout.
	FetchTimeout = 10 * time.Second

	// commitsPerRepo is the multiplier behind Stats.CommitsEstimate.
	commitsPerRepo = 15
)

// CatalogService fetches, filters, caches and normalizes an account's
// public repositories.
type CatalogService struct {
	lister     driven.RepositoryLister
	cache      driven.CacheStore
	normalizer *Normalizer
	logger     *slog.Logger
	now        func() time.Time
	flight     singleflight.Group
}

// NewCatalogService creates a CatalogService with all required dependencies.
func NewCatalogService(
	lister driven.RepositoryLister,
	cache driven.CacheStore,
	normalizer *Normalizer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		lister:     lister,
		cache:      cache,
		normalizer: normalizer,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock. Used by tests to age cache entries.
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// Normalizer returns the normalizer used to build display records.
func (s *CatalogService) Normalizer() *Normalizer {
	return s.normalizer
}

// GetRepositories returns the account's own repositories, excluding forks
// and the profile README repository, ordered by stars descending. A fresh
// cache entry is served without a network call. Failures are *model.FetchError
// and are never cached.
func (s *CatalogService) GetRepositories(ctx context.Context, account string) ([]model.RepositoryRecord, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, model.ErrInvalidAccount
	}

	key := reposKey(account)
	v, err := s.do(ctx, key, func(ctx context.Context) (any, error) {
		return s.loadRepositories(ctx, account, key)
	})
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.([]model.RepositoryRecord)), nil
}

// do runs fn once for all concurrent callers of key. fn runs detached from
// the caller's cancellation, so a caller that goes away does not fail the
// others; each caller still stops waiting when its own context ends.
// Fetches inside fn are bounded by FetchTimeout.
func (s *CatalogService) do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := s.flight.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, classifyFetchError(ctx, ctx.Err())
	}
}

func (s *CatalogService) loadRepositories(ctx context.Context, account, key string) ([]model.RepositoryRecord, error) {
	var cached []model.RepositoryRecord
	if entry, ok := s.readFresh(ctx, key, &cached); ok {
		filtered := FilterRepositories(cached, account)
		if len(filtered) != len(cached) {
			s.logger.Info("removed excluded repositories from cache", "account", account, "removed", len(cached)-len(filtered))
			s.write(ctx, key, filtered, entry.CapturedAt)
		}
		return filtered, nil
	}

	return s.fetchRepositories(ctx, account, key)
}

// fetchRepositories lists, filters and caches the account's repositories,
// ignoring any cached copy.
func (s *CatalogService) fetchRepositories(ctx context.Context, account, key string) ([]model.RepositoryRecord, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.lister.ListOwnerRepositories(fetchCtx, account)
	if err != nil {
		return nil, classifyFetchError(fetchCtx, err)
	}

	repos := FilterRepositories(raw, account)
	s.logger.Info("repositories fetched",
		"account", account,
		"fetched", len(raw),
		"kept", len(repos),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	s.write(ctx, key, repos, s.now())
	return repos, nil
}

// GetStats returns repository and star totals plus the commit estimate.
// Stats are cached independently of the repository list.
func (s *CatalogService) GetStats(ctx context.Context, account string) (model.Stats, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return model.Stats{}, model.ErrInvalidAccount
	}

	key := statsKey(account)
	v, err := s.do(ctx, key, func(ctx context.Context) (any, error) {
		var cached model.Stats
		if _, ok := s.readFresh(ctx, key, &cached); ok {
			return cached, nil
		}

		repos, err := s.GetRepositories(ctx, account)
		if err != nil {
			return model.Stats{}, err
		}

		stats := ComputeStats(repos)
		s.write(ctx, key, stats, s.now())
		return stats, nil
	})
	if err != nil {
		return model.Stats{}, err
	}

	return v.(model.Stats), nil
}

// Refresh re-fetches the repository list and replaces the cached list and
// stats. Unlike LoadCatalog with refresh set, a failed fetch leaves the
// existing cache in place.
func (s *CatalogService) Refresh(ctx context.Context, account string) (model.Stats, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return model.Stats{}, model.ErrInvalidAccount
	}

	key := reposKey(account)
	v, err := s.do(ctx, refreshKey(account), func(ctx context.Context) (any, error) {
		return s.fetchRepositories(ctx, account, key)
	})
	if err != nil {
		return model.Stats{}, err
	}

	stats := ComputeStats(v.([]model.RepositoryRecord))
	s.write(ctx, statsKey(account), stats, s.now())
	return stats, nil
}

// Invalidate evicts the cached repository list and stats for account.
func (s *CatalogService) Invalidate(ctx context.Context, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return model.ErrInvalidAccount
	}

	var errs []error
	for _, key := range []string{reposKey(account), statsKey(account)} {
		if err := s.cache.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("evict %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

// LoadCatalog is the read path behind the projects section. With refresh set
// the cached collections are re-fetched first; a failed refresh falls back to
// the retained snapshot. An empty filtered list is a FailureNoData.
func (s *CatalogService) LoadCatalog(ctx context.Context, account string, refresh bool) (model.Catalog, error) {
	repos, err := s.catalogRepositories(ctx, account, refresh)
	if err != nil {
		return model.Catalog{}, err
	}
	if len(repos) == 0 {
		return model.Catalog{}, &model.FetchError{Kind: model.FailureNoData, Err: fmt.Errorf("no repositories for %s", account)}
	}

	stats, err := s.GetStats(ctx, account)
	if err != nil {
		return model.Catalog{}, err
	}

	return model.Catalog{
		Account:   strings.TrimSpace(account),
		Projects:  s.normalizer.NormalizeAll(repos),
		Stats:     stats,
		Languages: SummarizeLanguages(repos),
	}, nil
}

func (s *CatalogService) catalogRepositories(ctx context.Context, account string, refresh bool) ([]model.RepositoryRecord, error) {
	if !refresh {
		return s.GetRepositories(ctx, account)
	}

	if _, err := s.Refresh(ctx, account); err != nil {
		if errors.Is(err, model.ErrInvalidAccount) {
			return nil, err
		}

		account = strings.TrimSpace(account)
		var cached []model.RepositoryRecord
		if _, ok := s.readFresh(ctx, reposKey(account), &cached); ok {
			s.logger.Warn("catalog refresh failed, serving cached repositories", "account", account, "error", err)
			return FilterRepositories(cached, account), nil
		}
		return nil, err
	}

	return s.GetRepositories(ctx, account)
}

// FindProject returns the display record with the given ID from the current
// catalog, or false if no project has that ID.
func (s *CatalogService) FindProject(ctx context.Context, account, id string) (model.ProjectDisplayRecord, bool, error) {
	catalog, err := s.LoadCatalog(ctx, account, false)
	if err != nil {
		return model.ProjectDisplayRecord{}, false, err
	}

	for _, p := range catalog.Projects {
		if p.ID == id {
			return p, true, nil
		}
	}
	return model.ProjectDisplayRecord{}, false, nil
}

// GetProfileReadme returns the raw markdown of the account's profile README,
// or "" when the account has none.
func (s *CatalogService) GetProfileReadme(ctx context.Context, account string) (string, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return "", model.ErrInvalidAccount
	}

	fetchCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	readme, err := s.lister.FetchProfileReadme(fetchCtx, account)
	if err != nil {
		return "", classifyFetchError(fetchCtx, err)
	}
	return readme, nil
}

// readFresh decodes the entry at key into dst when it exists and is younger
// than CacheTTL. Expired or undecodable entries are evicted.
func (s *CatalogService) readFresh(ctx context.Context, key string, dst any) (*model.CacheEntry, bool) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	if !entry.IsFresh(s.now(), CacheTTL) {
		s.logger.Debug("cache entry expired", "key", key, "age", entry.Age(s.now()).Round(time.Second))
		s.evict(ctx, key)
		return nil, false
	}

	if err := json.Unmarshal(entry.Data, dst); err != nil {
		s.logger.Warn("cache entry undecodable, evicting", "key", key, "error", err)
		s.evict(ctx, key)
		return nil, false
	}

	return entry, true
}

// write stores v under key. Cache write failures are logged, not returned:
// the caller already holds valid data.
func (s *CatalogService) write(ctx context.Context, key string, v any, capturedAt time.Time) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("cache encode failed", "key", key, "error", err)
		return
	}

	if err := s.cache.Put(ctx, model.CacheEntry{Key: key, Data: data, CapturedAt: capturedAt}); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *CatalogService) evict(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("cache evict failed", "key", key, "error", err)
	}
}

// FilterRepositories drops forks and the account's profile repository, then
// orders by stars descending. Ties keep their incoming (recency) order.
func FilterRepositories(repos []model.RepositoryRecord, account string) []model.RepositoryRecord {
	normalizedAccount := NormalizeName(account)

	kept := make([]model.RepositoryRecord, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.IsProfileRepo(account) || NormalizeName(r.Name) == normalizedAccount {
			continue
		}
		kept = append(kept, r)
	}

	slices.SortStableFunc(kept, func(a, b model.RepositoryRecord) int {
		return cmp.Compare(b.Stars, a.Stars)
	})
	return kept
}

// ComputeStats derives the counters from a filtered repository list.
func ComputeStats(repos []model.RepositoryRecord) model.Stats {
	stars := 0
	for _, r := range repos {
		stars += r.Stars
	}

	return model.Stats{
		RepoCount:         len(repos),
		StarsCount:        stars,
		CommitsEstimate:   len(repos) * commitsPerRepo,
		CommitsIsEstimate: true,
	}
}

// classifyFetchError guarantees a *model.FetchError, treating an expired
// fetch deadline as a timeout and anything else untyped as a network failure.
func classifyFetchError(ctx context.Context, err error) error {
	var fe *model.FetchError
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &model.FetchError{Kind: model.FailureTimeout, Err: err}
	}
	return &model.FetchError{Kind: model.FailureNetwork, Err: err}
}

func reposKey(account string) string {
	return "repos:" + strings.ToLower(account)
}

func statsKey(account string) string {
	return "stats:" + strings.ToLower(account)
}

// refreshKey is a flight key only; nothing is cached under it.
func refreshKey(account string) string {
	return "refresh:" + strings.ToLower(account)
}
