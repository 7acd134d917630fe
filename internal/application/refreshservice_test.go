package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/domain/model"
)

func TestCatalogRefresh_ReplacesCache(t *testing.T) {
	lister := staticLister(sampleRepos())
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)
	ctx := context.Background()

	_, err := svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	require.Equal(t, int32(1), lister.calls.Load())

	stats, err := svc.Refresh(ctx, "wian47")
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load(), "refresh ignores a fresh cache")
	assert.Equal(t, 3, stats.RepoCount)
	assert.True(t, cache.has("repos:wian47"))
	assert.True(t, cache.has("stats:wian47"))
}

func TestCatalogRefresh_FailureKeepsCache(t *testing.T) {
	fail := false
	lister := &mockLister{list: func(context.Context, string) ([]model.RepositoryRecord, error) {
		if fail {
			return nil, model.NewHTTPError(403, errors.New("rate limited"))
		}
		return sampleRepos(), nil
	}}
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)
	ctx := context.Background()

	_, err := svc.GetStats(ctx, "wian47")
	require.NoError(t, err)

	fail = true
	_, err = svc.Refresh(ctx, "wian47")
	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, model.FailureHTTP, fe.Kind)

	repos, err := svc.GetRepositories(ctx, "wian47")
	require.NoError(t, err)
	assert.Len(t, repos, 3, "cached list survives a failed refresh")
	assert.Equal(t, int32(2), lister.calls.Load())
}

func TestCatalogRefresh_InvalidAccount(t *testing.T) {
	svc, _ := newCatalogService(staticLister(nil), newMockCache())

	_, err := svc.Refresh(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrInvalidAccount)
}

func TestRefreshService_StartAndRefreshNow(t *testing.T) {
	lister := staticLister(sampleRepos())
	cache := newMockCache()
	svc, _ := newCatalogService(lister, cache)

	refresher := application.NewRefreshService(svc, "wian47", time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		refresher.Start(ctx)
		close(stopped)
	}()

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()
	require.NoError(t, refresher.RefreshNow(reqCtx))

	assert.Equal(t, int32(2), lister.calls.Load(), "initial refresh plus the manual one")
	assert.True(t, cache.has("stats:wian47"))

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh service did not stop")
	}
}

func TestRefreshService_RefreshNowCanceled(t *testing.T) {
	svc, _ := newCatalogService(staticLister(sampleRepos()), newMockCache())
	refresher := application.NewRefreshService(svc, "wian47", time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, refresher.RefreshNow(ctx), context.Canceled)
}
