package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wian47/portfolio/internal/adapter/driven/memory"
	"github.com/wian47/portfolio/internal/domain/model"
)

func TestCacheStore_RoundTrip(t *testing.T) {
	store := memory.NewCacheStore()
	ctx := context.Background()
	captured := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, model.CacheEntry{Key: "repos:octocat", Data: []byte(`[]`), CapturedAt: captured}))

	got, err := store.Get(ctx, "repos:octocat")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `[]`, string(got.Data))
	assert.Equal(t, captured, got.CapturedAt)
}

func TestCacheStore_EntriesAreSnapshots(t *testing.T) {
	store := memory.NewCacheStore()
	ctx := context.Background()

	data := []byte(`{"a":1}`)
	require.NoError(t, store.Put(ctx, model.CacheEntry{Key: "k", Data: data}))
	data[2] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got.Data), "mutating the input must not change the stored entry")

	got.Data[2] = 'y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again.Data), "mutating a returned entry must not change the stored entry")
}

func TestCacheStore_MissingAndDelete(t *testing.T) {
	store := memory.NewCacheStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Put(ctx, model.CacheEntry{Key: "k", Data: []byte(`1`)}))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"), "deleting twice is fine")

	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheStore_Clear(t *testing.T) {
	store := memory.NewCacheStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, model.CacheEntry{Key: "a", Data: []byte(`1`)}))
	require.NoError(t, store.Put(ctx, model.CacheEntry{Key: "b", Data: []byte(`2`)}))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCacheStore_ConcurrentAccess(t *testing.T) {
	store := memory.NewCacheStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for range goroutines {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, model.CacheEntry{Key: "k", Data: []byte(`1`)}))
		}()
		go func() {
			defer wg.Done()
			_, err := store.Get(ctx, "k")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
