package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// schemaVersion is the current on-disk schema. Version 2 introduced the
// derived lowercase fields and the secondary indexes; upgrading scans and
// rewrites every record before the new version is recorded, so a crash
// mid-migration just reruns it.
const (
	schemaVersion    = 2
	schemaVersionKey = "schema:version"
)

// migrate brings the database up to the current schema version.
func (s *Store) migrate(ctx context.Context) error {
	version, err := s.currentSchemaVersion()
	if err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("migrating schema", "from", version, "to", schemaVersion)
	}

	if err := s.backfillBooks(ctx); err != nil {
		return fmt.Errorf("backfill books: %w", err)
	}
	if err := s.backfillReviews(ctx); err != nil {
		return fmt.Errorf("backfill reviews: %w", err)
	}

	return s.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(schemaVersion)))
	})
}

func (s *Store) currentSchemaVersion() (int, error) {
	version := 0
	err := s.view(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaVersionKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("parse schema version %q: %w", val, err)
			}
			version = v
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// backfillBooks rewrites every book with its derived fields, timestamps
// and index entries in place. Records are collected first and rewritten in
// per-record transactions to stay under Badger's transaction size limit.
func (s *Store) backfillBooks(ctx context.Context) error {
	books, err := s.GetBooks(ctx)
	if err != nil {
		return err
	}

	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return err
		}
		book.Normalize()
		if book.CreatedAt.IsZero() {
			book.InitTimestamps()
		}
		if book.UpdatedAt.IsZero() {
			book.UpdatedAt = book.CreatedAt
		}
		err := s.update(func(txn *badger.Txn) error {
			return writeBook(txn, book)
		})
		if err != nil {
			return fmt.Errorf("rewrite book %d: %w", book.ID, err)
		}
	}
	return nil
}

// backfillReviews mirrors backfillBooks for the review collection.
func (s *Store) backfillReviews(ctx context.Context) error {
	reviews, err := s.GetReviews(ctx)
	if err != nil {
		return err
	}

	for _, review := range reviews {
		if err := ctx.Err(); err != nil {
			return err
		}
		if review.CreatedAt.IsZero() {
			review.InitTimestamps()
		}
		if review.UpdatedAt.IsZero() {
			review.UpdatedAt = review.CreatedAt
		}
		err := s.update(func(txn *badger.Txn) error {
			return writeReview(txn, review)
		})
		if err != nil {
			return fmt.Errorf("rewrite review %d: %w", review.ID, err)
		}
	}
	return nil
}

// writeRaw stores a record under an arbitrary key, bypassing index
// maintenance and the schema version. Migration tests use it to simulate
// pre-migration data.
func (s *Store) writeRaw(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal raw value: %w", err)
	}
	return s.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
