package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/domain/model"
)

// --- Mock implementations ---

type mockLister struct {
	calls  atomic.Int32
	list   func(ctx context.Context, account string) ([]model.RepositoryRecord, error)
	readme func(ctx context.Context, account string) (string, error)
}

func (m *mockLister) ListOwnerRepositories(ctx context.Context, account string) ([]model.RepositoryRecord, error) {
	m.calls.Add(1)
	return m.list(ctx, account)
}

func (m *mockLister) FetchProfileReadme(ctx context.Context, account string) (string, error) {
	if m.readme == nil {
		return "", nil
	}
	return m.readme(ctx, account)
}

func staticLister(repos []model.RepositoryRecord) *mockLister {
	return &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		return repos, nil
	}}
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]model.CacheEntry
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]model.CacheEntry)}
}

func (m *mockCache) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockCache) Put(_ context.Context, entry model.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Key] = entry
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCatalogService(lister *mockLister, cache *mockCache) (*application.CatalogService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := application.NewCatalogService(lister, cache, newTestNormalizer(), discardLogger()).WithClock(clock.Now)
	return svc, clock
}

func sampleRepos() []model.RepositoryRecord {
	return []model.RepositoryRecord{
		{ID: 1, Name: "To-Do-List-App", Language: "JavaScript", Stars: 2},
		{ID: 2, Name: "random-cli-tool", Language: "Rust", Stars: 9},
		{ID: 3, Name: "forked-lib", Language: "Go", Stars: 50, Fork: true},
		{ID: 4, Name: "Portfolio", Language: "HTML", Stars: 2},
	}
}

// --- Tests ---

func TestGetRepositories_ExcludesForksAndSortsByStars(t *testing.T) {
	svc, _ := newCatalogService(staticLister(sampleRepos()), newMockCache())

	repos, err := svc.GetRepositories(context.Background(), "wian47")
	require.NoError(t, err)

	require.Len(t, repos, 3)
	assert.Equal(t, "random-cli-tool", repos[0].Name)
	assert.Equal(t, "To-Do-List-App", repos[1].Name, "ties keep incoming order")
	assert.Equal(t, "Portfolio", repos[2].Name)
	for _, r := range repos {
		assert.False(t, r.Fork)
	}
}

func TestGetRepositories_ExcludesProfileRepo(t *testing.T) {
	repos := []model.RepositoryRecord{
		{ID: 1, Name: "alpha"},
		{ID: 2, Name: "WIAN47"},
		{ID: 3, Name: "beta"},
		{ID: 4, Name: "gamma"},
		{ID: 5, Name: "delta"},
	}
	svc, _ := newCatalogService(staticLister(repos), newMockCache())

	got, err := svc.GetRepositories(context.Background(), "wian47")
	require.NoError(t, err)
	assert.Len(t, got, 4)
	for _, r := range got {
		assert.NotEqual(t, "WIAN47", r.Name)
	}
}

func TestGetRepositories_EmptyAccount(t *testing.T) {
	lister := staticLister(sampleRepos())
	svc, _ := newCatalogService(lister, newMockCache())

	_, err := svc.GetRepositories(context.Background(), "   ")
	require.ErrorIs(t, err, model.ErrInvalidAccount)
	assert.Zero(t, lister.calls.Load())
}

func TestGetRepositories_CacheRoundTripWithinTTL(t *testing.T) {
	lister := staticLister(sampleRepos())
	svc, clock := newCatalogService(lister, newMockCache())
	ctx := context.Background()

	first, err := svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	require.Equal(t, int32(1), lister.calls.Load())

	clock.Advance(application.CacheTTL - time.Minute)

	second, err := svc.GetRepositories(ctx, "Wian47")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), lister.calls.Load(), "fresh cache must not hit the network")
}

func TestGetRepositories_RefetchesAfterTTL(t *testing.T) {
	lister := staticLister(sampleRepos())
	svc, clock := newCatalogService(lister, newMockCache())
	ctx := context.Background()

	_, err := svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)

	clock.Advance(application.CacheTTL)

	_, err = svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load())

	_, err = svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load(), "exactly one refetch after expiry")
}

func TestGetRepositories_RefiltersStaleCacheContents(t *testing.T) {
	cache := newMockCache()
	lister := staticLister(nil)
	svc, clock := newCatalogService(lister, cache)
	ctx := context.Background()

	captured := clock.Now().Add(-10 * time.Minute)
	require.NoError(t, cache.Put(ctx, model.CacheEntry{
		Key:        "repos:wian47",
		Data:       []byte(`[{"id":1,"name":"wian47"},{"id":2,"name":"keeper","stars":1},{"id":3,"name":"f","fork":true}]`),
		CapturedAt: captured,
	}))

	repos, err := svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "keeper", repos[0].Name)
	assert.Zero(t, lister.calls.Load())

	entry, err := cache.Get(ctx, "repos:wian47")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, captured, entry.CapturedAt, "rewriting keeps the original capture time")
	var rewritten []model.RepositoryRecord
	require.NoError(t, json.Unmarshal(entry.Data, &rewritten))
	require.Len(t, rewritten, 1)
	assert.Equal(t, "keeper", rewritten[0].Name)
}

func TestGetRepositories_UndecodableCacheIsRefetched(t *testing.T) {
	cache := newMockCache()
	lister := staticLister(sampleRepos())
	svc, clock := newCatalogService(lister, cache)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, model.CacheEntry{Key: "repos:wian47", Data: []byte(`{not json`), CapturedAt: clock.Now()}))

	repos, err := svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	assert.Len(t, repos, 3)
	assert.Equal(t, int32(1), lister.calls.Load())
}

func TestGetRepositories_CacheReadErrorFallsBackToFetch(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("disk on fire")
	lister := staticLister(sampleRepos())
	svc, _ := newCatalogService(lister, cache)

	repos, err := svc.GetRepositories(context.Background(), "wian47")
	require.NoError(t, err)
	assert.Len(t, repos, 3)
}

func TestGetRepositories_FailuresAreTypedAndNotCached(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind model.FailureKind
		wantCode int
	}{
		{"rate limited", model.NewHTTPError(http.StatusForbidden, errors.New("API rate limit exceeded")), model.FailureHTTP, http.StatusForbidden},
		{"malformed", &model.FetchError{Kind: model.FailureMalformed, Err: errors.New("bad json")}, model.FailureMalformed, 0},
		{"untyped becomes network", errors.New("connection reset"), model.FailureNetwork, 0},
		{"deadline becomes timeout", context.DeadlineExceeded, model.FailureTimeout, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newMockCache()
			lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
				return nil, tt.err
			}}
			svc, _ := newCatalogService(lister, cache)

			_, err := svc.GetRepositories(context.Background(), "wian47")
			require.Error(t, err)

			var fe *model.FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, tt.wantCode, fe.StatusCode)
			assert.False(t, cache.has("repos:wian47"), "failures are never cached")
		})
	}
}

func TestGetRepositories_SlowListerTimesOut(t *testing.T) {
	lister := &mockLister{list: func(ctx context.Context, _ string) ([]model.RepositoryRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc, _ := newCatalogService(lister, newMockCache())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.GetRepositories(ctx, "wian47")
	kind, ok := model.FailureKindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.FailureTimeout, kind)
}

func TestGetRepositories_ConcurrentCallsShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		<-release
		return sampleRepos(), nil
	}}
	svc, _ := newCatalogService(lister, newMockCache())

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			repos, err := svc.GetRepositories(context.Background(), "wian47")
			assert.NoError(t, err)
			assert.Len(t, repos, 3)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), lister.calls.Load())
}

func TestGetRepositories_DepartingCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	lister := &mockLister{list: func(ctx context.Context, _ string) ([]model.RepositoryRecord, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleRepos(), nil
	}}
	svc, _ := newCatalogService(lister, newMockCache())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetRepositories(firstCtx, "wian47")
		firstErr <- err
	}()
	<-started

	type result struct {
		repos []model.RepositoryRecord
		err   error
	}
	second := make(chan result, 1)
	go func() {
		repos, err := svc.GetRepositories(context.Background(), "wian47")
		second <- result{repos, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		require.Error(t, err, "the departing caller stops waiting")
	case <-time.After(5 * time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	close(release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Len(t, res.repos, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, int32(1), lister.calls.Load())
}

func TestRefresh_DoesNotJoinInFlightCacheRead(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		if first.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
		return sampleRepos(), nil
	}}
	svc, _ := newCatalogService(lister, newMockCache())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.GetRepositories(context.Background(), "wian47")
		assert.NoError(t, err)
	}()
	<-started

	_, err := svc.Refresh(context.Background(), "wian47")
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load(), "refresh fetches on its own")

	close(release)
	<-done
}

func TestGetStats(t *testing.T) {
	lister := staticLister(sampleRepos())
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)
	ctx := context.Background()

	stats, err := svc.GetStats(ctx, "wian47")
	require.NoError(t, err)
	assert.Equal(t, model.Stats{RepoCount: 3, StarsCount: 13, CommitsEstimate: 45, CommitsIsEstimate: true}, stats)
	assert.True(t, cache.has("stats:wian47"))

	again, err := svc.GetStats(ctx, "wian47")
	require.NoError(t, err)
	assert.Equal(t, stats, again)
	assert.Equal(t, int32(1), lister.calls.Load())
}

func TestGetStats_Failure(t *testing.T) {
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		return nil, model.NewHTTPError(http.StatusForbidden, nil)
	}}
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)

	_, err := svc.GetStats(context.Background(), "wian47")

	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
	assert.False(t, cache.has("stats:wian47"))
}

func TestInvalidate(t *testing.T) {
	lister := staticLister(sampleRepos())
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)
	ctx := context.Background()

	_, err := svc.GetStats(ctx, "wian47")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, "WIAN47"))
	assert.False(t, cache.has("repos:wian47"))
	assert.False(t, cache.has("stats:wian47"))

	_, err = svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load())

	require.ErrorIs(t, svc.Invalidate(ctx, ""), model.ErrInvalidAccount)
}

func TestLoadCatalog(t *testing.T) {
	lister := staticLister(sampleRepos())
	svc, _ := newCatalogService(lister, newMockCache())
	ctx := context.Background()

	catalog, err := svc.LoadCatalog(ctx, " wian47 ", false)
	require.NoError(t, err)

	assert.Equal(t, "wian47", catalog.Account)
	require.Len(t, catalog.Projects, 3)
	assert.Equal(t, "random cli tool", catalog.Projects[0].Title)
	assert.Equal(t, model.CategoryCode, catalog.Projects[0].Category)
	assert.Equal(t, "assets/projects/default-code.svg", catalog.Projects[0].ImageRef)
	assert.Equal(t, model.CategoryWeb, catalog.Projects[1].Category)
	assert.Equal(t, 3, catalog.Stats.RepoCount)
	assert.NotEmpty(t, catalog.Languages)

	_, err = svc.LoadCatalog(ctx, "wian47", true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load(), "refresh bypasses the cache")
}

func TestLoadCatalog_RefreshFailureKeepsSnapshot(t *testing.T) {
	var outage atomic.Bool
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		if outage.Load() {
			return nil, model.NewHTTPError(http.StatusForbidden, errors.New("rate limited"))
		}
		return sampleRepos(), nil
	}}
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)
	ctx := context.Background()

	_, err := svc.LoadCatalog(ctx, "wian47", false)
	require.NoError(t, err)

	outage.Store(true)
	catalog, err := svc.LoadCatalog(ctx, "wian47", true)
	require.NoError(t, err, "a failed refresh serves the retained snapshot")
	assert.Len(t, catalog.Projects, 3)
	assert.Equal(t, 3, catalog.Stats.RepoCount)
	assert.True(t, cache.has("repos:wian47"))
	assert.Equal(t, int32(2), lister.calls.Load())
}

func TestLoadCatalog_RefreshFailureWithoutSnapshot(t *testing.T) {
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		return nil, model.NewHTTPError(http.StatusForbidden, errors.New("rate limited"))
	}}
	svc, _ := newCatalogService(lister, newMockCache())

	_, err := svc.LoadCatalog(context.Background(), "wian47", true)
	kind, ok := model.FailureKindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.FailureHTTP, kind)
	assert.Equal(t, int32(1), lister.calls.Load(), "no second fetch after a failed refresh")
}

func TestLoadCatalog_RefreshFailureIgnoresExpiredSnapshot(t *testing.T) {
	var outage atomic.Bool
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		if outage.Load() {
			return nil, &model.FetchError{Kind: model.FailureNetwork, Err: errors.New("connection reset")}
		}
		return sampleRepos(), nil
	}}
	svc, clock := newCatalogService(lister, newMockCache())
	ctx := context.Background()

	_, err := svc.LoadCatalog(ctx, "wian47", false)
	require.NoError(t, err)

	clock.Advance(application.CacheTTL + time.Minute)
	outage.Store(true)

	_, err = svc.LoadCatalog(ctx, "wian47", true)
	kind, ok := model.FailureKindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.FailureNetwork, kind)
}

func TestLoadCatalog_NoData(t *testing.T) {
	repos := []model.RepositoryRecord{{Name: "wian47"}, {Name: "fork", Fork: true}}
	svc, _ := newCatalogService(staticLister(repos), newMockCache())

	_, err := svc.LoadCatalog(context.Background(), "wian47", false)
	kind, ok := model.FailureKindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.FailureNoData, kind)
}

func TestFindProject(t *testing.T) {
	svc, _ := newCatalogService(staticLister(sampleRepos()), newMockCache())
	ctx := context.Background()

	p, ok, err := svc.FindProject(ctx, "wian47", "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "To Do List App", p.Title)

	_, ok, err = svc.FindProject(ctx, "wian47", "3")
	require.NoError(t, err)
	assert.False(t, ok, "forks are not projects")
}

func TestGetProfileReadme(t *testing.T) {
	lister := staticLister(nil)
	lister.readme = func(_ context.Context, account string) (string, error) {
		return "# Hi, I'm " + account, nil
	}
	svc, _ := newCatalogService(lister, newMockCache())

	readme, err := svc.GetProfileReadme(context.Background(), "wian47")
	require.NoError(t, err)
	assert.Equal(t, "# Hi, I'm wian47", readme)

	lister.readme = func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}
	_, err = svc.GetProfileReadme(context.Background(), "wian47")
	kind, ok := model.FailureKindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.FailureNetwork, kind)
}
