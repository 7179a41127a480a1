package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
)

func TestSearchCache_HitAndMiss(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	results := []openlibrary.SearchResult{{Key: "/works/OL893415W", Title: "Dune", Author: "Frank Herbert"}}

	cached, err := s.GetCachedSearch(ctx, "dune", 5, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, cached, "cold cache misses")

	require.NoError(t, s.CacheSearch(ctx, "dune", 5, results, time.Hour))

	cached, err = s.GetCachedSearch(ctx, "dune", 5, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.Len(t, cached.Results, 1)
	assert.Equal(t, "Dune", cached.Results[0].Title)

	// Queries normalize, so case and spacing differences still hit.
	cached, err = s.GetCachedSearch(ctx, "  DUNE ", 5, time.Hour)
	require.NoError(t, err)
	assert.NotNil(t, cached)

	// Asking for more results than were cached is a miss.
	cached, err = s.GetCachedSearch(ctx, "dune", 10, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestSearchCache_StaleEntryMisses(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CacheSearch(ctx, "dune", 5, nil, time.Hour))

	time.Sleep(10 * time.Millisecond)
	cached, err := s.GetCachedSearch(ctx, "dune", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
