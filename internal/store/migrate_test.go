package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// legacyBook mimics a record written before the derived fields and
// secondary indexes existed.
type legacyBook struct {
	ID     uint64 `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`
}

type legacyReview struct {
	ID     uint64  `json:"id"`
	BookID uint64  `json:"book_id"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

func TestMigrate_BackfillsLegacyRecords(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "shelfmark-migrate-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath, nil)
	require.NoError(t, err)

	// Rewind to schema 1 and plant records without derived fields,
	// timestamps or index entries.
	require.NoError(t, s.writeRaw(schemaVersionKey, 1))
	require.NoError(t, s.writeRaw(string(bookKey(1)), legacyBook{
		ID:     1,
		Title:  "A Wizard of Earthsea",
		Author: "Ursula K. Le Guin",
		Status: "finished",
	}))
	require.NoError(t, s.writeRaw(string(reviewKey(1)), legacyReview{
		ID:     1,
		BookID: 1,
		Rating: 9,
		Text:   "formative",
	}))
	require.NoError(t, s.Close())

	// Reopening runs the migration.
	s, err = New(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	book, err := s.GetBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a wizard of earthsea", book.TitleLower)
	assert.Equal(t, "ursula k. le guin", book.AuthorLower)
	assert.False(t, book.CreatedAt.IsZero())
	assert.False(t, book.UpdatedAt.IsZero())

	// Index entries were rebuilt.
	finished, err := s.GetBooksByStatus(ctx, domain.StatusFinished)
	require.NoError(t, err)
	require.Len(t, finished, 1)

	reviews, err := s.GetReviewsByBook(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.False(t, reviews[0].CreatedAt.IsZero())

	version, err := s.currentSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
}

func TestMigrate_CurrentSchemaIsUntouched(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "shelfmark-migrate-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath, nil)
	require.NoError(t, err)

	ctx := context.Background()
	id, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Status: domain.StatusLibrary})
	require.NoError(t, err)

	before, err := s.GetBook(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	after, err := s.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "no rewrite on up-to-date schema")
}
