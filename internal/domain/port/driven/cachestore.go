package driven

import (
	"context"

	"github.com/wian47/portfolio/internal/domain/model"
)

// CacheStore defines the driven port for the catalog's key-value snapshot cache.
// Each key holds at most one entry; Put replaces it whole.
type CacheStore interface {
	// Get returns the entry stored under key, or nil, nil when absent.
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	Put(ctx context.Context, entry model.CacheEntry) error
	// Delete evicts key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
