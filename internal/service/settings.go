package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

// SettingsService reads and updates the user's preferences.
type SettingsService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewSettingsService(store *store.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: store, logger: logger}
}

// Get returns the current settings, defaults included.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	return s.store.GetSettings(ctx)
}

// SettingsUpdate carries the fields a client may change; nil means keep.
type SettingsUpdate struct {
	DiscordWebhookURL *string
	ShareMode         *domain.ShareMode
}

// Update applies the changes and returns the stored settings.
func (s *SettingsService) Update(ctx context.Context, update SettingsUpdate) (*domain.Settings, error) {
	current, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if update.DiscordWebhookURL != nil {
		url := strings.TrimSpace(*update.DiscordWebhookURL)
		if url != "" && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
			return nil, store.ErrInvalidInput.WithMessage("webhook url must be http or https")
		}
		current.DiscordWebhookURL = url
	}
	if update.ShareMode != nil {
		if !update.ShareMode.Valid() {
			return nil, store.ErrInvalidInput.WithMessage("share mode must be full or summary")
		}
		current.ShareMode = *update.ShareMode
	}

	if err := s.store.UpdateSettings(ctx, current); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("settings updated",
			"share_mode", current.ShareMode,
			"webhook_configured", current.DiscordWebhookURL != "")
	}
	return current, nil
}
