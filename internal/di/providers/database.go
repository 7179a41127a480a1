package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability. Store is nil when
// the database failed to open; the server then runs in degraded mode with
// only the catalog proxy available.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Close()
}

// ProvideStore provides the database store. A failed open is not fatal:
// the handle comes back empty and persistence routes answer 503.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	dbPath := cfg.DatabasePath()
	db, err := store.New(dbPath, log)
	if err != nil {
		log.Warn("Database unavailable, starting in degraded mode",
			"path", dbPath,
			"error", err,
		)
		return &StoreHandle{}, nil
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
