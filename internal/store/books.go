package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// Book operations.

// AddBook assigns an identity to the book, stamps timestamps, recomputes
// the derived lowercase fields and persists the record with its index
// entries in one transaction. Returns the new identity.
func (s *Store) AddBook(ctx context.Context, book *domain.Book) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(book.Title) == "" {
		return 0, ErrInvalidInput.WithMessage("book title is required")
	}

	id, err := s.nextBookID()
	if err != nil {
		return 0, err
	}
	book.ID = id
	if book.CreatedAt.IsZero() {
		book.InitTimestamps()
	} else {
		book.Touch()
	}
	book.Normalize()

	err = s.update(func(txn *badger.Txn) error {
		return writeBook(txn, book)
	})
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book added", "id", book.ID, "title", book.Title, "status", book.Status)
	}
	return id, nil
}

// UpdateBook replaces the stored record, preserving the original CreatedAt
// when one exists under the same identity. An update without an identity is
// a validation error; an identity that matches no record persists the book
// under that identity.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if book.ID == 0 {
		return ErrInvalidInput.WithMessage("update requires a book id")
	}
	if strings.TrimSpace(book.Title) == "" {
		return ErrInvalidInput.WithMessage("book title is required")
	}

	err := s.update(func(txn *badger.Txn) error {
		old, err := getBook(txn, book.ID)
		if err != nil && !errors.Is(err, ErrBookNotFound) {
			return err
		}

		if old != nil {
			book.CreatedAt = old.CreatedAt
			if err := deleteBookIndexes(txn, old); err != nil {
				return err
			}
		} else if book.CreatedAt.IsZero() {
			book.InitTimestamps()
		}
		book.Touch()
		book.Normalize()

		return writeBook(txn, book)
	})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id uint64) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.view(func(txn *badger.Txn) error {
		var err error
		book, err = getBook(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBooks returns every book, ordered by identity.
func (s *Store) GetBooks(ctx context.Context) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0)
	err := s.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return fmt.Errorf("unmarshal book: %w", err)
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}
	return books, nil
}

// GetBooksByStatus returns books matching a status via the status index.
func (s *Store) GetBooksByStatus(ctx context.Context, status domain.Status) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookByStatusPrefix + string(status) + ":")
	books := make([]*domain.Book, 0)

	err := s.view(func(txn *badger.Txn) error {
		ids, err := collectIndexIDs(txn, prefix)
		if err != nil {
			return err
		}
		for _, id := range ids {
			book, err := getBook(txn, id)
			if err != nil {
				return err
			}
			books = append(books, book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get books by status: %w", err)
	}
	return books, nil
}

// DeleteBook deletes a book and cascades to its reviews in one transaction.
// Deleting a missing book is a no-op.
func (s *Store) DeleteBook(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		book, err := getBook(txn, id)
		if errors.Is(err, ErrBookNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := deleteBookIndexes(txn, book); err != nil {
			return err
		}
		if err := txn.Delete(bookKey(id)); err != nil {
			return err
		}

		// Cascade: remove every review pointing at this book.
		reviewIDs, err := collectIndexIDs(txn, reviewByBookIndexPrefix(id))
		if err != nil {
			return err
		}
		for _, reviewID := range reviewIDs {
			if err := deleteReview(txn, reviewID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", id)
	}
	return nil
}

// Transaction-scoped helpers.

func getBook(txn *badger.Txn, id uint64) (*domain.Book, error) {
	item, err := txn.Get(bookKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var book domain.Book
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &book)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal book: %w", err)
	}
	return &book, nil
}

func writeBook(txn *badger.Txn, book *domain.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	if err := txn.Set(bookKey(book.ID), data); err != nil {
		return err
	}
	for _, key := range bookIndexKeys(book) {
		if err := txn.Set(key, idValue(book.ID)); err != nil {
			return err
		}
	}
	return nil
}

func deleteBookIndexes(txn *badger.Txn, book *domain.Book) error {
	for _, key := range bookIndexKeys(book) {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// bookIndexKeys builds the secondary index keys for a book. Each key ends
// in the padded ID so non-unique values (status, lowercase title) coexist.
func bookIndexKeys(book *domain.Book) [][]byte {
	suffix := fmt.Sprintf("%020d", book.ID)
	return [][]byte{
		[]byte(bookByStatusPrefix + string(book.Status) + ":" + suffix),
		[]byte(bookByTitlePrefix + book.TitleLower + ":" + suffix),
		[]byte(bookByAuthorPrefix + book.AuthorLower + ":" + suffix),
		[]byte(bookByCreatedPrefix + paddedNano(book.CreatedAt.UnixNano()) + ":" + suffix),
	}
}

// collectIndexIDs gathers record IDs stored under an index prefix, in key
// order.
func collectIndexIDs(txn *badger.Txn, prefix []byte) ([]uint64, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []uint64
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			id, err := strconv.ParseUint(string(val), 10, 64)
			if err != nil {
				return fmt.Errorf("parse index value %q: %w", val, err)
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
