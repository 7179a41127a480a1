package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// Review operations.

// SaveReview upserts a review. With an explicit identity the matching
// record is replaced (CreatedAt preserved). Without one the review keyed
// on the same book is updated in place, keeping the legacy
// one-review-per-book behavior, and stray duplicates left behind by older
// versions are swept. Returns the persisted record including its identity.
func (s *Store) SaveReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if review.BookID == 0 {
		return nil, ErrInvalidInput.WithMessage("review requires a book id")
	}

	saved := *review
	err := s.update(func(txn *badger.Txn) error {
		if saved.ID != 0 {
			old, err := getReview(txn, saved.ID)
			if err != nil && !errors.Is(err, ErrReviewNotFound) {
				return err
			}
			if old != nil {
				saved.CreatedAt = old.CreatedAt
				if err := deleteReviewIndexes(txn, old); err != nil {
					return err
				}
			} else if saved.CreatedAt.IsZero() {
				saved.InitTimestamps()
			}
			saved.Touch()
			return writeReview(txn, &saved)
		}

		ids, err := collectIndexIDs(txn, reviewByBookIndexPrefix(saved.BookID))
		if err != nil {
			return err
		}

		if len(ids) > 0 {
			primary, err := getReview(txn, ids[0])
			if err != nil {
				return err
			}
			saved.ID = primary.ID
			saved.CreatedAt = primary.CreatedAt
			saved.Touch()
			if err := deleteReviewIndexes(txn, primary); err != nil {
				return err
			}
			if err := writeReview(txn, &saved); err != nil {
				return err
			}
			// Clean up any duplicate entries left from earlier versions.
			for _, id := range ids[1:] {
				if err := deleteReview(txn, id); err != nil {
					return err
				}
			}
			return nil
		}

		id, err := s.nextReviewID()
		if err != nil {
			return err
		}
		saved.ID = id
		if saved.CreatedAt.IsZero() {
			saved.InitTimestamps()
		}
		saved.Touch()
		return writeReview(txn, &saved)
	})
	if err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review saved", "id", saved.ID, "book_id", saved.BookID, "rating", saved.Rating)
	}
	return &saved, nil
}

// AddReview always inserts a new review, for the multi-review model.
// Returns the new identity.
func (s *Store) AddReview(ctx context.Context, review *domain.Review) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if review.BookID == 0 {
		return 0, ErrInvalidInput.WithMessage("review requires a book id")
	}

	id, err := s.nextReviewID()
	if err != nil {
		return 0, err
	}
	review.ID = id
	if review.CreatedAt.IsZero() {
		review.InitTimestamps()
	}
	review.Touch()

	err = s.update(func(txn *badger.Txn) error {
		return writeReview(txn, review)
	})
	if err != nil {
		return 0, fmt.Errorf("add review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review added", "id", id, "book_id", review.BookID)
	}
	return id, nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id uint64) (*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var review *domain.Review
	err := s.view(func(txn *badger.Txn) error {
		var err error
		review, err = getReview(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// GetReviews returns every review, ordered by identity.
func (s *Store) GetReviews(ctx context.Context) ([]*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reviews := make([]*domain.Review, 0)
	err := s.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reviewPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(reviewPrefix)); it.ValidForPrefix([]byte(reviewPrefix)); it.Next() {
			var review domain.Review
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &review)
			})
			if err != nil {
				return fmt.Errorf("unmarshal review: %w", err)
			}
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	return reviews, nil
}

// GetReviewsByBook returns a book's reviews, most recently updated first.
func (s *Store) GetReviewsByBook(ctx context.Context, bookID uint64) ([]*domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reviews := make([]*domain.Review, 0)
	err := s.view(func(txn *badger.Txn) error {
		ids, err := collectIndexIDs(txn, reviewByBookIndexPrefix(bookID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			review, err := getReview(txn, id)
			if err != nil {
				return err
			}
			reviews = append(reviews, review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get reviews by book: %w", err)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].LastTouched().After(reviews[j].LastTouched())
	})
	return reviews, nil
}

// DeleteReview removes a review by ID. Deleting a missing review is a
// no-op.
func (s *Store) DeleteReview(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		return deleteReview(txn, id)
	})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// DeleteReviewsByBook scans the book index and removes every matching
// review.
func (s *Store) DeleteReviewsByBook(ctx context.Context, bookID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.update(func(txn *badger.Txn) error {
		ids, err := collectIndexIDs(txn, reviewByBookIndexPrefix(bookID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := deleteReview(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete reviews by book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("reviews deleted for book", "book_id", bookID)
	}
	return nil
}

// Transaction-scoped helpers.

func getReview(txn *badger.Txn, id uint64) (*domain.Review, error) {
	item, err := txn.Get(reviewKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	var review domain.Review
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &review)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}
	return &review, nil
}

func writeReview(txn *badger.Txn, review *domain.Review) error {
	data, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	if err := txn.Set(reviewKey(review.ID), data); err != nil {
		return err
	}
	for _, key := range reviewIndexKeys(review) {
		if err := txn.Set(key, idValue(review.ID)); err != nil {
			return err
		}
	}
	return nil
}

// deleteReview removes a review record and its index keys. Missing
// records are ignored.
func deleteReview(txn *badger.Txn, id uint64) error {
	review, err := getReview(txn, id)
	if errors.Is(err, ErrReviewNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := deleteReviewIndexes(txn, review); err != nil {
		return err
	}
	return txn.Delete(reviewKey(id))
}

func deleteReviewIndexes(txn *badger.Txn, review *domain.Review) error {
	for _, key := range reviewIndexKeys(review) {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func reviewIndexKeys(review *domain.Review) [][]byte {
	suffix := fmt.Sprintf("%020d", review.ID)
	return [][]byte{
		fmt.Appendf(nil, "%s%020d:%s", reviewByBookPrefix, review.BookID, suffix),
		[]byte(reviewByUpdatedPrefix + paddedNano(review.UpdatedAt.UnixNano()) + ":" + suffix),
	}
}

func reviewByBookIndexPrefix(bookID uint64) []byte {
	return fmt.Appendf(nil, "%s%020d:", reviewByBookPrefix, bookID)
}
