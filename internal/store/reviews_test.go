package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

func addTestBook(t *testing.T, s *Store, title string) uint64 {
	t.Helper()
	id, err := s.AddBook(context.Background(), &domain.Book{Title: title, Status: domain.StatusFinished})
	require.NoError(t, err)
	return id
}

func TestSaveReview_CreatesAndReturnsIdentity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bookID := addTestBook(t, s, "Dune")

	saved, err := s.SaveReview(ctx, &domain.Review{BookID: bookID, Rating: 9, Text: "A classic."})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, 9.0, saved.Rating)
}

func TestSaveReview_RequiresBookID(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.SaveReview(context.Background(), &domain.Review{Rating: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveReview_SecondSaveUpdatesInPlace(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bookID := addTestBook(t, s, "Dune")

	first, err := s.SaveReview(ctx, &domain.Review{BookID: bookID, Rating: 6, Text: "ok"})
	require.NoError(t, err)

	second, err := s.SaveReview(ctx, &domain.Review{BookID: bookID, Rating: 9, Text: "better on reread"})
	require.NoError(t, err)

	// Same identity, original CreatedAt, new content.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 9.0, second.Rating)

	reviews, err := s.GetReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestSaveReview_SweepsLegacyDuplicates(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bookID := addTestBook(t, s, "Dune")

	// Older versions could leave several reviews on one book.
	primaryID, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 6, Text: "first"})
	require.NoError(t, err)
	_, err = s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 7, Text: "second"})
	require.NoError(t, err)

	saved, err := s.SaveReview(ctx, &domain.Review{BookID: bookID, Rating: 9, Text: "merged"})
	require.NoError(t, err)
	assert.Equal(t, primaryID, saved.ID)

	reviews, err := s.GetReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "merged", reviews[0].Text)
}

func TestSaveReview_ExplicitIdentity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bookID := addTestBook(t, s, "Dune")

	first, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 6, Text: "first take"})
	require.NoError(t, err)
	secondID, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 7, Text: "second take"})
	require.NoError(t, err)

	// Targeting the second review by ID leaves the first alone.
	saved, err := s.SaveReview(ctx, &domain.Review{ID: secondID, BookID: bookID, Rating: 8, Text: "revised"})
	require.NoError(t, err)
	assert.Equal(t, secondID, saved.ID)

	reviews, err := s.GetReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	got, err := s.GetReview(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "first take", got.Text)
}

func TestGetReviewsByBook_MostRecentFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bookID := addTestBook(t, s, "Dune")

	oldID, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 6, Text: "old"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newID, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 8, Text: "new"})
	require.NoError(t, err)

	reviews, err := s.GetReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, newID, reviews[0].ID)
	assert.Equal(t, oldID, reviews[1].ID)
}

func TestDeleteReviewsByBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bookID := addTestBook(t, s, "Dune")
	otherID := addTestBook(t, s, "Hyperion")

	_, err := s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 6})
	require.NoError(t, err)
	_, err = s.AddReview(ctx, &domain.Review{BookID: bookID, Rating: 7, Text: "again"})
	require.NoError(t, err)
	keep, err := s.AddReview(ctx, &domain.Review{BookID: otherID, Rating: 8})
	require.NoError(t, err)

	require.NoError(t, s.DeleteReviewsByBook(ctx, bookID))

	reviews, err := s.GetReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, keep, reviews[0].ID)
}

func TestDeleteReview_MissingIsNoOp(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NoError(t, s.DeleteReview(context.Background(), 999))
}
