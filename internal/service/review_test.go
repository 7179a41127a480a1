package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/notify"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
)

func addBook(t *testing.T, st *store.Store, title string, status domain.Status) uint64 {
	t.Helper()
	id, err := st.AddBook(context.Background(), &domain.Book{Title: title, Status: status})
	require.NoError(t, err)
	return id
}

func TestReviewService_SaveReview_ConvertsAndSnapshots(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)

	ctx := context.Background()
	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	outcome, err := svc.SaveReview(ctx, bookID, ReviewInput{Rating: 4.5, Text: "great"})
	require.NoError(t, err)

	assert.Equal(t, 9.0, outcome.Review.Rating, "stars are stored doubled")
	assert.Equal(t, domain.StatusFinished, outcome.Review.StatusSnapshot)
	assert.Equal(t, notify.StatusSkipped, outcome.Share.Status)
}

func TestReviewService_SaveReview_Spellcheck(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)

	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	outcome, err := svc.SaveReview(context.Background(), bookID, ReviewInput{
		Rating:     4,
		Text:       "Definately teh best",
		Spellcheck: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Definitely the best", outcome.Review.Text)
}

func TestReviewService_SaveReview_RatingValidation(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)
	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	for _, rating := range []float64{-1, 5.5, 6, 4.3} {
		_, err := svc.SaveReview(context.Background(), bookID, ReviewInput{Rating: rating})
		assert.ErrorIs(t, err, store.ErrInvalidInput, "rating %v", rating)
	}
}

func TestReviewService_SaveReview_BookMustExist(t *testing.T) {
	svc := NewReviewService(setupStore(t), notify.New(nil), nil)

	_, err := svc.SaveReview(context.Background(), 42, ReviewInput{Rating: 4})
	assert.ErrorIs(t, err, store.ErrBookNotFound)
}

func TestReviewService_Share_SentWithPriorTakes(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)
	ctx := context.Background()
	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	var posts int
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	require.NoError(t, st.UpdateSettings(ctx, &domain.Settings{
		DiscordWebhookURL: webhook.URL,
		ShareMode:         domain.ShareModeFull,
	}))

	// An earlier take the share should reference.
	_, err := svc.AddReview(ctx, bookID, ReviewInput{Rating: 3, Text: "first pass"})
	require.NoError(t, err)

	outcome, err := svc.AddReview(ctx, bookID, ReviewInput{Rating: 4.5, Text: "reread", Share: true})
	require.NoError(t, err)
	assert.Equal(t, notify.StatusSent, outcome.Share.Status)
	assert.Equal(t, 1, posts)
}

func TestReviewService_Share_FailureDoesNotRollBack(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)
	ctx := context.Background()
	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer webhook.Close()

	require.NoError(t, st.UpdateSettings(ctx, &domain.Settings{
		DiscordWebhookURL: webhook.URL,
		ShareMode:         domain.ShareModeFull,
	}))

	outcome, err := svc.SaveReview(ctx, bookID, ReviewInput{Rating: 4, Text: "saved anyway", Share: true})
	require.NoError(t, err, "local save succeeds even when the webhook fails")
	assert.Equal(t, notify.StatusError, outcome.Share.Status)

	reviews, err := st.GetReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "saved anyway", reviews[0].Text)
}

func TestReviewService_Share_SkippedWithoutWebhook(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)
	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	outcome, err := svc.SaveReview(context.Background(), bookID, ReviewInput{Rating: 4, Share: true})
	require.NoError(t, err)
	assert.Equal(t, notify.StatusSkipped, outcome.Share.Status)
	assert.Equal(t, "missing webhook", outcome.Share.Reason)
}

func TestReviewService_AddReview_Appends(t *testing.T) {
	st := setupStore(t)
	svc := NewReviewService(st, notify.New(nil), nil)
	ctx := context.Background()
	bookID := addBook(t, st, "Dune", domain.StatusFinished)

	_, err := svc.AddReview(ctx, bookID, ReviewInput{Rating: 3, Text: "first"})
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, bookID, ReviewInput{Rating: 4, Text: "second"})
	require.NoError(t, err)

	reviews, err := svc.ListByBook(ctx, bookID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
