package api

import (
	"net/http"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

// CoverPayload references a cover image by identifier namespace or URL.
type CoverPayload struct {
	Source string `json:"source" validate:"required,oneof=id isbn lccn oclc olid url"`
	Value  string `json:"value" validate:"required,max=2048"`
}

func (c *CoverPayload) toDomain() *domain.Cover {
	if c == nil {
		return nil
	}
	return &domain.Cover{Source: domain.CoverSource(c.Source), Value: c.Value}
}

// BookCreateRequest creates a book, either by hand or from a catalog
// search result. An initial review may ride along.
type BookCreateRequest struct {
	Title          string               `json:"title" validate:"required,max=500"`
	Author         string               `json:"author" validate:"max=500"`
	Status         string               `json:"status" validate:"omitempty,oneof=wishlist library reading re-reading on-hold finished did-not-finish"`
	Unread         bool                 `json:"unread"`
	Year           int                  `json:"year" validate:"omitempty,gte=0,lte=3000"`
	Cover          *CoverPayload        `json:"cover"`
	OpenLibraryURL string               `json:"open_library_url" validate:"omitempty,url"`
	Identifiers    *domain.Identifiers  `json:"identifiers"`
	Availability   *domain.Availability `json:"availability"`
	Review         *ReviewRequest       `json:"review"`
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookCreateRequest
	if !s.decode(w, r, &req) {
		return
	}

	book := &domain.Book{
		Title:          req.Title,
		Author:         req.Author,
		Status:         domain.Status(req.Status),
		Unread:         req.Unread,
		Year:           req.Year,
		Cover:          req.Cover.toDomain(),
		OpenLibraryURL: req.OpenLibraryURL,
		Identifiers:    req.Identifiers,
		Availability:   req.Availability,
	}

	var initial *domain.Review
	if req.Review != nil {
		initial = &domain.Review{
			Rating: req.Review.Rating * 2,
			Text:   req.Review.Text,
			Unread: req.Review.Unread,
		}
	}

	created, err := s.books.AddBook(r.Context(), book, initial)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, created, s.logger)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	params := service.ListParams{
		Status: domain.Status(r.URL.Query().Get("status")),
		Query:  r.URL.Query().Get("q"),
	}

	books, err := s.books.ListBooks(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, books, s.logger)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	book, err := s.books.GetBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// BookUpdateRequest patches a book. Only non-nil fields are applied;
// omitempty is deliberately absent so "clear this field" survives the
// round trip.
type BookUpdateRequest struct {
	Title          *string       `json:"title" validate:"omitempty,max=500"`
	Author         *string       `json:"author" validate:"omitempty,max=500"`
	Status         *string       `json:"status" validate:"omitempty,oneof=wishlist library reading re-reading on-hold finished did-not-finish"`
	Unread         *bool         `json:"unread"`
	Year           *int          `json:"year" validate:"omitempty,gte=0,lte=3000"`
	Cover          *CoverPayload `json:"cover"`
	OpenLibraryURL *string       `json:"open_library_url" validate:"omitempty,url"`
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	var req BookUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}

	book, err := s.books.GetBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Status != nil {
		book.Status = domain.Status(*req.Status)
	}
	if req.Unread != nil {
		book.Unread = *req.Unread
	}
	if req.Year != nil {
		book.Year = *req.Year
	}
	if req.Cover != nil {
		book.Cover = req.Cover.toDomain()
	}
	if req.OpenLibraryURL != nil {
		book.OpenLibraryURL = *req.OpenLibraryURL
	}

	updated, err := s.books.UpdateBook(r.Context(), book)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, updated, s.logger)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	if err := s.books.DeleteBook(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}
