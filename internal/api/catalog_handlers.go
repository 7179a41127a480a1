package api

import (
	"net/http"
	"strconv"

	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
)

const maxCatalogLimit = 50

// handleCatalogSearch proxies a search to Open Library, cache permitting.
func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "limit must be a positive integer", s.logger)
			return
		}
		limit = min(parsed, maxCatalogLimit)
	}

	results, err := s.catalog.Search(r.Context(), query, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, results, s.logger)
}
