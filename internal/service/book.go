// Package service provides the business logic layer over the store,
// catalog client, search index and notifier.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
	"github.com/shelfmarkapp/shelfmark-server/internal/search"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

// BookService orchestrates book operations and keeps the library index in
// step with the store.
type BookService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewBookService creates a new book service. The index may be nil; book
// operations then skip indexing and ListBooks falls back to the store.
func NewBookService(store *store.Store, index *search.Index, logger *slog.Logger) *BookService {
	return &BookService{store: store, index: index, logger: logger}
}

// AddBook persists a new book, defaulting the status to wishlist. When an
// initial review is given it is stored against the new book in the same
// call.
func (s *BookService) AddBook(ctx context.Context, book *domain.Book, initial *domain.Review) (*domain.Book, error) {
	if book.Status == "" {
		book.Status = domain.StatusWishlist
	}
	if !book.Status.Valid() {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown status %q", book.Status))
	}

	id, err := s.store.AddBook(ctx, book)
	if err != nil {
		return nil, err
	}

	if initial != nil {
		initial.BookID = id
		initial.StatusSnapshot = book.Status
		if _, err := s.store.AddReview(ctx, initial); err != nil {
			return nil, fmt.Errorf("add initial review: %w", err)
		}
	}

	s.indexBook(book)
	return book, nil
}

// ImportSearchResult adds a catalog search result to the library, carrying
// over cover, identifiers and availability.
func (s *BookService) ImportSearchResult(ctx context.Context, result openlibrary.SearchResult, status domain.Status) (*domain.Book, error) {
	book := &domain.Book{
		Title:          result.Title,
		Author:         result.Author,
		Status:         status,
		Year:           result.Year,
		Cover:          result.Cover,
		OpenLibraryURL: result.OpenLibraryURL,
		Identifiers:    result.Identifiers,
		Availability:   result.Availability,
	}
	return s.AddBook(ctx, book, nil)
}

// GetBook retrieves a single book.
func (s *BookService) GetBook(ctx context.Context, id uint64) (*domain.Book, error) {
	return s.store.GetBook(ctx, id)
}

// UpdateBook replaces a book record and reindexes it.
func (s *BookService) UpdateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if !book.Status.Valid() {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown status %q", book.Status))
	}
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	s.indexBook(book)
	return book, nil
}

// DeleteBook removes a book, its reviews and its index entry. Missing
// books delete cleanly.
func (s *BookService) DeleteBook(ctx context.Context, id uint64) error {
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteBook(id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from index", "id", id, "error", err)
		}
	}
	return nil
}

// ListParams filters a library listing.
type ListParams struct {
	Status domain.Status
	Query  string
}

// ListBooks returns library books. With a query the search index drives
// the result order; otherwise books come straight from the store.
func (s *BookService) ListBooks(ctx context.Context, params ListParams) ([]*domain.Book, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown status %q", params.Status))
	}

	if params.Query != "" && s.index != nil {
		hits, err := s.index.Search(ctx, search.Params{
			Query:  params.Query,
			Status: string(params.Status),
		})
		if err != nil {
			return nil, fmt.Errorf("search library: %w", err)
		}

		books := make([]*domain.Book, 0, len(hits))
		for _, hit := range hits {
			book, err := s.store.GetBook(ctx, hit.BookID)
			if errors.Is(err, store.ErrBookNotFound) {
				// Index lag after a delete; skip the stale hit.
				continue
			}
			if err != nil {
				return nil, err
			}
			books = append(books, book)
		}
		return books, nil
	}

	if params.Status != "" {
		return s.store.GetBooksByStatus(ctx, params.Status)
	}
	return s.store.GetBooks(ctx)
}

// Reindex rebuilds the search index from the store. Called at startup and
// after reconciliation.
func (s *BookService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	books, err := s.store.GetBooks(ctx)
	if err != nil {
		return err
	}
	if err := s.index.IndexBooks(books); err != nil {
		return fmt.Errorf("reindex books: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("library reindexed", "books", len(books))
	}
	return nil
}

func (s *BookService) indexBook(book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(book); err != nil && s.logger != nil {
		s.logger.Warn("failed to index book", "id", book.ID, "error", err)
	}
}
