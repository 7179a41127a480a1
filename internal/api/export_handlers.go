package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"

	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
)

// handleExport streams a full library snapshot as a JSON download.
// The snapshot is written un-enveloped so the file can be re-imported
// elsewhere as-is.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.exports.Create(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("X-Snapshot-Id", export.SnapshotID)
	w.WriteHeader(http.StatusOK)

	if err := json.MarshalWrite(w, export.Snapshot); err != nil && s.logger != nil {
		s.logger.Error("Failed to stream export", "error", err)
	}
}
