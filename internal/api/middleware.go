package api

import (
	"net"
	"net/http"

	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
)

// requireStore fails persistence routes with 503 when the database could
// not be opened. Catalog search bypasses this so the app stays partially
// usable.
func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			response.ServiceUnavailable(w, "library storage is unavailable", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitCatalog rate limits the Open Library proxy per client IP so one
// misbehaving tab cannot get the whole server throttled upstream.
func (s *Server) limitCatalog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.catalogLimiter.Allow(host) {
			response.Error(w, http.StatusTooManyRequests, "too many catalog searches, slow down", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
