package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

// CatalogService searches Open Library with a store-backed result cache.
type CatalogService struct {
	store    *store.Store
	client   *openlibrary.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewCatalogService creates a catalog service. The store may be nil when
// the database failed to open; search then runs uncached so the catalog
// stays usable.
func NewCatalogService(st *store.Store, client *openlibrary.Client, cacheTTL time.Duration, logger *slog.Logger) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = store.DefaultSearchCacheTTL
	}
	return &CatalogService{store: st, client: client, cacheTTL: cacheTTL, logger: logger}
}

// Search queries the catalog, serving recent identical queries from cache.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]openlibrary.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, store.ErrInvalidInput.WithMessage("search query is required")
	}

	if s.store != nil {
		cached, err := s.store.GetCachedSearch(ctx, query, limit, s.cacheTTL)
		if err != nil && s.logger != nil {
			s.logger.Warn("search cache read failed", "error", err)
		}
		if cached != nil {
			return cached.Results, nil
		}
	}

	results, err := s.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.CacheSearch(ctx, query, limit, results, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("search cache write failed", "error", err)
		}
	}
	return results, nil
}
