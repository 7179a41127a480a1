package api

import (
	"net/http"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

// SettingsUpdateRequest patches user settings. Nil fields are untouched;
// an empty webhook URL turns sharing off.
type SettingsUpdateRequest struct {
	DiscordWebhookURL *string `json:"discord_webhook_url"`
	ShareMode         *string `json:"share_mode" validate:"omitempty,oneof=full summary"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, settings, s.logger)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}

	update := service.SettingsUpdate{DiscordWebhookURL: req.DiscordWebhookURL}
	if req.ShareMode != nil {
		mode := domain.ShareMode(*req.ShareMode)
		update.ShareMode = &mode
	}

	settings, err := s.settings.Update(r.Context(), update)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, settings, s.logger)
}
