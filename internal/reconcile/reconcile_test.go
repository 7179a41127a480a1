package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

func setupTest(t *testing.T) (*store.Store, *Reconciler) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "shelfmark-reconcile-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(tmpDir)
	})
	return s, New(s, nil)
}

func TestRun_MergesDuplicatesByTitleAndAuthor(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	catalogedID, err := s.AddBook(ctx, &domain.Book{
		Title:          "Dune",
		Author:         "Frank Herbert",
		Status:         domain.StatusLibrary,
		OpenLibraryURL: "https://openlibrary.org/works/OL893415W",
		Cover:          &domain.Cover{Source: domain.CoverSourceID, Value: "12345"},
	})
	require.NoError(t, err)

	bareID, err := s.AddBook(ctx, &domain.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: domain.StatusFinished,
		Year:   1965,
	})
	require.NoError(t, err)

	_, err = s.AddReview(ctx, &domain.Review{BookID: bareID, Rating: 9, Text: "masterpiece"})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged)
	assert.Equal(t, 1, report.Reassigned)

	// The cataloged record survives and inherits the year.
	_, err = s.GetBook(ctx, bareID)
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	survivor, err := s.GetBook(ctx, catalogedID)
	require.NoError(t, err)
	assert.Equal(t, 1965, survivor.Year)
	assert.Equal(t, "https://openlibrary.org/works/OL893415W", survivor.OpenLibraryURL)

	reviews, err := s.GetReviewsByBook(ctx, catalogedID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "masterpiece", reviews[0].Text)
}

func TestRun_MergesAuthorlessEntryByTitle(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	fullID, err := s.AddBook(ctx, &domain.Book{Title: "Hyperion", Author: "Dan Simmons", Status: domain.StatusLibrary})
	require.NoError(t, err)
	_, err = s.AddBook(ctx, &domain.Book{Title: "Hyperion", Status: domain.StatusLibrary})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged)

	books, err := s.GetBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, fullID, books[0].ID)
	assert.Equal(t, "Dan Simmons", books[0].Author)
}

func TestRun_DistinctBooksAreUntouched(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	_, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusLibrary})
	require.NoError(t, err)
	_, err = s.AddBook(ctx, &domain.Book{Title: "Dune Messiah", Author: "Frank Herbert", Status: domain.StatusLibrary})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Empty())

	books, err := s.GetBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestRun_DedupesReviewsByContent(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	bookID, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Status: domain.StatusFinished})
	require.NoError(t, err)

	// Same rating, same text modulo case and spacing.
	_, err = s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 9, Text: "A  Classic"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	keeperID, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 9, Text: "a classic"})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deduped)

	reviews, err := s.GetReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, keeperID, reviews[0].ID, "most recently updated copy survives")
}

func TestRun_TrimsReviewsToCap(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	bookID, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Status: domain.StatusFinished})
	require.NoError(t, err)

	texts := []string{"one", "two", "three", "four", "five", "six", "seven"}
	for i, text := range texts {
		_, err = s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: float64(i + 1), Text: text})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Trimmed)

	reviews, err := s.GetReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, reviews, domain.MaxReviewsPerBook)
	// The newest five survive.
	assert.Equal(t, "seven", reviews[0].Text)
	assert.Equal(t, "three", reviews[4].Text)
}

func TestRun_RealignsStatusFromLatestReview(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	bookID, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Status: domain.StatusLibrary})
	require.NoError(t, err)
	_, err = s.AddReview(ctx, &domain.Review{
		BookID:         bookID,
		Rating:         8,
		Text:           "done",
		StatusSnapshot: domain.StatusFinished,
	})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Realigned)
	assert.False(t, report.Empty(), "a realign-only pass still reports changes")

	book, err := s.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, book.Status)
}

func TestRun_AuthorlessTwinDoesNotBridgeDistinctAuthors(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	frankID, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusLibrary})
	require.NoError(t, err)
	brianID, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Author: "Brian Herbert", Status: domain.StatusLibrary})
	require.NoError(t, err)
	_, err = s.AddBook(ctx, &domain.Book{Title: "Dune", Status: domain.StatusLibrary})
	require.NoError(t, err)

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Merged, "only the author-less entry folds away")

	// Same title, different authors: both editions must survive.
	books, err := s.GetBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)

	_, err = s.GetBook(ctx, frankID)
	assert.NoError(t, err)
	_, err = s.GetBook(ctx, brianID)
	assert.NoError(t, err)
}

func TestRun_SecondPassIsIdempotent(t *testing.T) {
	s, r := setupTest(t)
	ctx := context.Background()

	_, err := s.AddBook(ctx, &domain.Book{
		Title:          "Dune",
		Author:         "Frank Herbert",
		Status:         domain.StatusLibrary,
		OpenLibraryURL: "https://openlibrary.org/works/OL893415W",
	})
	require.NoError(t, err)
	dupID, err := s.AddBook(ctx, &domain.Book{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusLibrary})
	require.NoError(t, err)

	for i := range 7 {
		_, err = s.AddReview(ctx, &domain.Review{BookID: dupID, Rating: float64(i), Text: "take"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	first, err := r.Run(ctx)
	require.NoError(t, err)
	assert.False(t, first.Empty())

	booksBefore, err := s.GetBooks(ctx)
	require.NoError(t, err)

	second, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, second.Empty(), "stable data reconciles to zero changes")

	booksAfter, err := s.GetBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, booksBefore, booksAfter)
}
