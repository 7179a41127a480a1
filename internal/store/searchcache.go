package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
)

const (
	searchCachePrefix = "cache:search:"

	// DefaultSearchCacheTTL bounds how long catalog results are reused.
	DefaultSearchCacheTTL = 24 * time.Hour
)

// CachedSearch wraps catalog search results with cache info.
type CachedSearch struct {
	Results   []openlibrary.SearchResult `json:"results"`
	Query     string                     `json:"query"`
	Limit     int                        `json:"limit"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// GetCachedSearch retrieves cached catalog results for a query.
// Returns nil, nil when the cache has nothing fresh enough.
func (s *Store) GetCachedSearch(ctx context.Context, query string, limit int, ttl time.Duration) (*CachedSearch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}

	key := searchCacheKey(query)

	var cached CachedSearch
	found := false
	err := s.view(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get cached search: %w", err)
	}

	// A stale hit or one fetched with a smaller limit is a miss.
	if !found || time.Since(cached.FetchedAt) > ttl || cached.Limit < limit {
		return nil, nil
	}
	return &cached, nil
}

// CacheSearch stores catalog results for reuse. Entries expire on the
// Badger side as well so abandoned queries don't accumulate.
func (s *Store) CacheSearch(ctx context.Context, query string, limit int, results []openlibrary.SearchResult, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}

	cached := CachedSearch{
		Results:   results,
		Query:     query,
		Limit:     limit,
		FetchedAt: time.Now(),
	}
	data, err := json.Marshal(&cached)
	if err != nil {
		return fmt.Errorf("marshal cached search: %w", err)
	}

	return s.update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(searchCacheKey(query), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

func searchCacheKey(query string) []byte {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return []byte(searchCachePrefix + normalized)
}
