package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// mappingVersion bumps whenever the index mapping changes, forcing a
// rebuild on startup when a stale index is found on disk.
const mappingVersion = "1"

// Index wraps a Bleve index over the library. All public methods are safe
// for concurrent use; the mutex guards the swap during Rebuild.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Open creates or opens the library index under dataPath. A corrupted or
// out-of-date index is discarded and recreated; callers reindex from the
// store afterwards either way.
func Open(dataPath string, logger *slog.Logger) (*Index, error) {
	indexPath := filepath.Join(dataPath, "library.bleve")
	versionPath := filepath.Join(dataPath, "library.version")

	rebuild := false
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(version) != mappingVersion {
			rebuild = true
		}
	}

	var index bleve.Index
	var err error
	if !rebuild {
		index, err = bleve.Open(indexPath)
		if err != nil && logger != nil {
			logger.Warn("failed to open library index, recreating", "path", indexPath, "error", err)
		}
	}

	if index == nil {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0644); err != nil && logger != nil {
			logger.Warn("failed to write index version file", "error", err)
		}
	}

	return &Index{index: index, path: indexPath, logger: logger}, nil
}

// Close closes the index and releases its lock file.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}

// IndexBook adds or updates a book in the index.
func (i *Index) IndexBook(book *domain.Book) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	doc := BookDocument(book)
	return i.index.Index(doc.ID, doc.ToMap())
}

// IndexBooks indexes books in one batch; used for the startup reindex.
func (i *Index) IndexBooks(books []*domain.Book) error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	batch := i.index.NewBatch()
	for _, book := range books {
		doc := BookDocument(book)
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	return i.index.Batch(batch)
}

// DeleteBook removes a book from the index.
func (i *Index) DeleteBook(id uint64) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.Delete(DocID(id))
}

// Count returns the number of indexed books.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Rebuild drops the on-disk index and creates an empty one. The caller
// reindexes from the store afterwards.
func (i *Index) Rebuild() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(i.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(i.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	i.index = index

	if i.logger != nil {
		i.logger.Info("rebuilt library index", "path", i.path)
	}
	return nil
}
