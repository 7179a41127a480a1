package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/notify"
	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
)

// ProvideOpenLibraryClient provides the Open Library API client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return openlibrary.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.CoverBaseURL, log), nil
}

// ProvideNotifier provides the Discord webhook notifier.
func ProvideNotifier(i do.Injector) (*notify.Notifier, error) {
	log := do.MustInvoke[*slog.Logger](i)

	return notify.New(log), nil
}
