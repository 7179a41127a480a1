// Package store persists the personal library in an embedded Badger
// database. Books and reviews live under their own key prefixes with
// secondary index keys maintained alongside; every exported operation runs
// in a single transaction.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes. Index keys embed the record ID so non-unique values can
// coexist; the value of an index key is the record ID it points at.
const (
	bookPrefix          = "book:"
	bookByStatusPrefix  = "idx:books:status:"
	bookByTitlePrefix   = "idx:books:title:"
	bookByAuthorPrefix  = "idx:books:author:"
	bookByCreatedPrefix = "idx:books:created:"

	reviewPrefix          = "review:"
	reviewByBookPrefix    = "idx:reviews:book:"
	reviewByUpdatedPrefix = "idx:reviews:updated:"

	seqBooksKey   = "seq:books"
	seqReviewsKey = "seq:reviews"

	sequenceBandwidth = 64
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	bookSeq   *badger.Sequence
	reviewSeq *badger.Sequence
}

// New opens (or creates) the database at path and applies any pending
// schema migration before returning.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	bookSeq, err := db.GetSequence([]byte(seqBooksKey), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open book sequence: %w", err)
	}
	reviewSeq, err := db.GetSequence([]byte(seqReviewsKey), sequenceBandwidth)
	if err != nil {
		_ = bookSeq.Release()
		_ = db.Close()
		return nil, fmt.Errorf("open review sequence: %w", err)
	}

	s := &Store{
		db:        db,
		logger:    logger,
		bookSeq:   bookSeq,
		reviewSeq: reviewSeq,
	}

	if err := s.migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	if logger != nil {
		logger.Info("database opened", "path", path)
	}
	return s, nil
}

// Close releases the ID sequences and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database")
	}
	if s.bookSeq != nil {
		_ = s.bookSeq.Release()
	}
	if s.reviewSeq != nil {
		_ = s.reviewSeq.Release()
	}
	return s.db.Close()
}

// Clear drops every book and review, including index entries. Settings and
// the schema version survive.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefixes := []string{
		bookPrefix, bookByStatusPrefix, bookByTitlePrefix, bookByAuthorPrefix, bookByCreatedPrefix,
		reviewPrefix, reviewByBookPrefix, reviewByUpdatedPrefix,
	}
	for _, prefix := range prefixes {
		if err := s.db.DropPrefix([]byte(prefix)); err != nil {
			return fmt.Errorf("drop prefix %s: %w", prefix, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("store cleared")
	}
	return nil
}

// update runs fn in a read-write transaction, classifying failures so
// callers can distinguish aborts from other errors.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	return wrapTxnErr(s.db.Update(fn))
}

// view runs fn in a read-only transaction.
func (s *Store) view(fn func(txn *badger.Txn) error) error {
	return wrapTxnErr(s.db.View(fn))
}

// nextBookID returns the next book identity. IDs start at 1.
func (s *Store) nextBookID() (uint64, error) {
	n, err := s.bookSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("next book id: %w", err)
	}
	return n + 1, nil
}

// nextReviewID returns the next review identity. IDs start at 1.
func (s *Store) nextReviewID() (uint64, error) {
	n, err := s.reviewSeq.Next()
	if err != nil {
		return 0, fmt.Errorf("next review id: %w", err)
	}
	return n + 1, nil
}

// Key builders. Numeric IDs and timestamps are zero-padded so lexical key
// order matches numeric order under iteration.

func bookKey(id uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", bookPrefix, id)
}

func reviewKey(id uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", reviewPrefix, id)
}

func idValue(id uint64) []byte {
	return fmt.Appendf(nil, "%020d", id)
}

func paddedNano(unixNano int64) string {
	return fmt.Sprintf("%020d", unixNano)
}
