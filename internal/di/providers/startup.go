package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

// SeedSettingsIfNeeded copies the configured webhook URL into stored
// settings on first run. Stored settings win on every run after that.
func SeedSettingsIfNeeded(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	if storeHandle.Store == nil || cfg.Notify.DiscordWebhookURL == "" {
		return
	}

	ctx := context.Background()
	settingsService := do.MustInvoke[*service.SettingsService](i)

	current, err := settingsService.Get(ctx)
	if err != nil {
		log.Warn("Failed to read settings for webhook seed", "error", err)
		return
	}
	if current.DiscordWebhookURL != "" {
		return
	}

	url := cfg.Notify.DiscordWebhookURL
	if _, err := settingsService.Update(ctx, service.SettingsUpdate{DiscordWebhookURL: &url}); err != nil {
		log.Warn("Failed to seed webhook URL from config", "error", err)
		return
	}
	log.Info("Seeded Discord webhook URL from config")
}

// RunStartupReconcile merges duplicate books left behind by crashed or
// concurrent imports. Runs in the background so startup is not delayed.
func RunStartupReconcile(i do.Injector) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	if storeHandle.Store == nil {
		return
	}

	reconcileService := do.MustInvoke[*service.ReconcileService](i)

	go func() {
		ctx := context.Background()
		report, err := reconcileService.Run(ctx)
		if err != nil {
			log.Error("Startup reconciliation failed", "error", err)
			return
		}
		if !report.Empty() {
			log.Info("Startup reconciliation merged duplicates",
				"merged", report.Merged,
				"reassigned", report.Reassigned,
				"deduped", report.Deduped,
				"trimmed", report.Trimmed,
				"realigned", report.Realigned,
			)
		}
	}()
}

// TriggerSearchReindexIfNeeded rebuilds an empty index when books exist.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	if storeHandle.Store == nil || indexHandle.Index == nil {
		return
	}

	docCount, _ := indexHandle.Count()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	books, err := storeHandle.GetBooks(ctx)
	if err != nil || len(books) == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering initial reindex",
		"book_count", len(books),
	)

	bookService := do.MustInvoke[*service.BookService](i)
	go func() {
		reindexCtx := context.Background()
		if err := bookService.Reindex(reindexCtx); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.Count()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
