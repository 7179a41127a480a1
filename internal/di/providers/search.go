package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability. The
// index is nil in degraded mode; book queries then fall back to store scans.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	// Without a store there is nothing to index.
	if storeHandle.Store == nil {
		return &SearchIndexHandle{}, nil
	}

	index, err := search.Open(cfg.IndexPath(), log)
	if err != nil {
		log.Warn("Search index unavailable, queries fall back to store scans", "error", err)
		return &SearchIndexHandle{}, nil
	}

	docCount, _ := index.Count()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}
