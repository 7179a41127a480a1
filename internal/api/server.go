// Package api provides the HTTP API server and handlers for the Shelfmark
// application.
package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
	"github.com/shelfmarkapp/shelfmark-server/internal/ratelimit"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
	"github.com/shelfmarkapp/shelfmark-server/internal/validation"
)

// Server holds dependencies for HTTP handlers. The store is nil when the
// database failed to open; persistence routes then answer 503 while the
// catalog stays reachable.
type Server struct {
	store      *store.Store
	books      *service.BookService
	reviews    *service.ReviewService
	catalog    *service.CatalogService
	settings   *service.SettingsService
	exports    *service.ExportService
	reconciler *service.ReconcileService
	validator  *validation.Validator
	router     *chi.Mux

	// catalogLimiter throttles the Open Library proxy per client IP.
	catalogLimiter *ratelimit.KeyedRateLimiter

	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *store.Store,
	books *service.BookService,
	reviews *service.ReviewService,
	catalog *service.CatalogService,
	settings *service.SettingsService,
	exports *service.ExportService,
	reconciler *service.ReconcileService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:      store,
		books:      books,
		reviews:    reviews,
		catalog:    catalog,
		settings:   settings,
		exports:    exports,
		reconciler: reconciler,
		validator:  validation.New(),
		router:     chi.NewRouter(),
		// 2 searches per second with room for a quick burst of typing.
		catalogLimiter: ratelimit.New(2, 5),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. CORS is wide open: the
// server binds to localhost for a single user and the web client may be
// served from anywhere.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Legacy stubs kept for clients of the original placeholder server.
	s.router.Post("/api/books", s.handleLegacyBooks)
	s.router.Post("/api/scan", s.handleLegacyScan)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog search works even when the local store is down.
		r.With(s.limitCatalog).Get("/catalog/search", s.handleCatalogSearch)

		r.Group(func(r chi.Router) {
			r.Use(s.requireStore)

			r.Route("/books", func(r chi.Router) {
				r.Get("/", s.handleListBooks)
				r.Post("/", s.handleCreateBook)
				r.Get("/{id}", s.handleGetBook)
				r.Patch("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)

				r.Get("/{id}/reviews", s.handleListReviews)
				r.Put("/{id}/review", s.handleSaveReview)
				r.Post("/{id}/reviews", s.handleAddReview)
				r.Delete("/{id}/reviews", s.handleDeleteBookReviews)
			})

			r.Delete("/reviews/{id}", s.handleDeleteReview)

			r.Get("/export", s.handleExport)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", s.handleGetSettings)
				r.Put("/", s.handleUpdateSettings)
			})

			r.Post("/reconcile", s.handleReconcile)
		})
	})
}

// handleHealth mirrors the original placeholder server's health payload.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLegacyBooks(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusNotImplemented, map[string]string{
		"message": "Local-first mode only. Use IndexedDB client instead.",
	})
}

func (s *Server) handleLegacyScan(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusOK, map[string]string{"message": "Not implemented"})
}

// writeRaw writes un-enveloped JSON, for the legacy endpoints whose wire
// shape predates the envelope.
func writeRaw(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.MarshalWrite(w, data)
}

// handleReconcile runs a reconciliation pass on demand.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.Run(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, report, s.logger)
}
