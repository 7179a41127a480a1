package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/search"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "shelfmark-service-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tmpDir)
	})
	return s
}

func setupIndex(t *testing.T) *search.Index {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "shelfmark-service-index-*")
	require.NoError(t, err)

	index, err := search.Open(tmpDir, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		index.Close()
		os.RemoveAll(tmpDir)
	})
	return index
}
