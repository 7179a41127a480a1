package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/notify"
	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
	"github.com/shelfmarkapp/shelfmark-server/internal/reconcile"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewBookService(storeHandle.Store, indexHandle.Index, log), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	notifier := do.MustInvoke[*notify.Notifier](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewReviewService(storeHandle.Store, notifier, log), nil
}

// ProvideCatalogService provides the Open Library catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	client := do.MustInvoke[*openlibrary.Client](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewCatalogService(storeHandle.Store, client, cfg.Catalog.SearchCacheTTL, log), nil
}

// ProvideSettingsService provides the settings service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewSettingsService(storeHandle.Store, log), nil
}

// ProvideExportService provides the export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewExportService(storeHandle.Store, log), nil
}

// ProvideReconcileService provides the reconciliation service.
func ProvideReconcileService(i do.Injector) (*service.ReconcileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewReconcileService(reconcile.New(storeHandle.Store, log), books, log), nil
}
