package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*CacheStore)(nil)

const cacheTable = "cache_entries"

// CacheStore is the SQLite implementation of the CacheStore port. Entries
// survive process restarts; freshness is decided by the caller.
type CacheStore struct {
	db *DB
}

// NewCacheStore creates a new CacheStore backed by the given DB.
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

// Get returns the entry stored under key, or nil, nil if there is none.
func (s *CacheStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	query, args, err := sq.Select("cache_key", "data", "captured_at_ms").
		From(cacheTable).
		Where(sq.Eq{"cache_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cache query: %w", err)
	}

	var (
		entry      model.CacheEntry
		data       string
		capturedMs int64
	)
	err = s.db.Reader.QueryRowContext(ctx, query, args...).Scan(&entry.Key, &data, &capturedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry %s: %w", key, err)
	}

	entry.Data = []byte(data)
	entry.CapturedAt = time.UnixMilli(capturedMs).UTC()

	return &entry, nil
}

// Put stores entry, replacing any entry already held under its key.
func (s *CacheStore) Put(ctx context.Context, entry model.CacheEntry) error {
	if entry.Key == "" {
		return errors.New("put cache entry: empty key")
	}

	capturedAt := entry.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	query, args, err := sq.Insert(cacheTable).
		Columns("cache_key", "data", "captured_at_ms").
		Values(entry.Key, string(entry.Data), capturedAt.UnixMilli()).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data, captured_at_ms = excluded.captured_at_ms").
		ToSql()
	if err != nil {
		return fmt.Errorf("build cache upsert: %w", err)
	}

	if _, err := s.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put cache entry %s: %w", entry.Key, err)
	}

	return nil
}

// Delete evicts key. Deleting an absent key is a no-op.
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete(cacheTable).Where(sq.Eq{"cache_key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build cache delete: %w", err)
	}

	if _, err := s.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete cache entry %s: %w", key, err)
	}

	return nil
}

// Clear evicts every entry and returns how many were removed.
func (s *CacheStore) Clear(ctx context.Context) (int64, error) {
	query, args, err := sq.Delete(cacheTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cache clear: %w", err)
	}

	result, err := s.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return rows, nil
}
