package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/notify"
	"github.com/shelfmarkapp/shelfmark-server/internal/store"
	"github.com/shelfmarkapp/shelfmark-server/internal/util"
)

// ReviewService saves reviews and cross-posts them to the configured
// webhook. A webhook failure never rolls back the local save; the outcome
// carries both results.
type ReviewService struct {
	store    *store.Store
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewReviewService(store *store.Store, notifier *notify.Notifier, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, notifier: notifier, logger: logger}
}

// ReviewInput is a review as clients submit it: stars on the 0-5 scale in
// half steps, stored doubled on 0-10.
type ReviewInput struct {
	Rating     float64
	Text       string
	Unread     bool
	Spellcheck bool
	Share      bool
}

// SaveOutcome reports a saved review plus what happened to the share.
// Share is StatusSkipped unless sharing was requested.
type SaveOutcome struct {
	Review *domain.Review
	Share  notify.Result
}

// SaveReview upserts the book's primary review.
func (s *ReviewService) SaveReview(ctx context.Context, bookID uint64, in ReviewInput) (*SaveOutcome, error) {
	return s.save(ctx, bookID, in, true)
}

// AddReview appends a new review to the book.
func (s *ReviewService) AddReview(ctx context.Context, bookID uint64, in ReviewInput) (*SaveOutcome, error) {
	return s.save(ctx, bookID, in, false)
}

func (s *ReviewService) save(ctx context.Context, bookID uint64, in ReviewInput, replace bool) (*SaveOutcome, error) {
	if err := validateStarRating(in.Rating); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Earlier takes, captured before the save so the new review does not
	// show up in its own share.
	prior, err := s.store.GetReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	text := in.Text
	if in.Spellcheck {
		text = util.Spellcheck(text)
	}

	review := &domain.Review{
		BookID:         bookID,
		Rating:         in.Rating * 2,
		Text:           text,
		Unread:         in.Unread,
		StatusSnapshot: book.Status,
	}

	var saved *domain.Review
	if replace {
		saved, err = s.store.SaveReview(ctx, review)
	} else {
		_, err = s.store.AddReview(ctx, review)
		saved = review
	}
	if err != nil {
		return nil, err
	}

	outcome := &SaveOutcome{
		Review: saved,
		Share:  notify.Result{Status: notify.StatusSkipped, Reason: "sharing not requested"},
	}
	if in.Share {
		outcome.Share = s.share(ctx, book, saved, prior)
	}
	return outcome, nil
}

// share posts the review to the webhook from settings. Failures land in
// the Result so the caller can surface "saved locally, share failed".
func (s *ReviewService) share(ctx context.Context, book *domain.Book, saved *domain.Review, prior []*domain.Review) notify.Result {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return notify.Result{Status: notify.StatusError, Err: fmt.Errorf("load settings: %w", err)}
	}

	recent := make([]*domain.Review, 0, len(prior))
	for _, r := range prior {
		if r.ID != saved.ID {
			recent = append(recent, r)
		}
	}

	result := s.notifier.Post(ctx, settings.DiscordWebhookURL, notify.Message{
		Book:      book,
		Review:    saved,
		Recent:    recent,
		ShareMode: settings.ShareMode,
	})

	if result.Status == notify.StatusError && s.logger != nil {
		s.logger.Warn("review saved but share failed", "book_id", book.ID, "error", result.Err)
	}
	return result
}

// ListByBook returns a book's reviews, most recent first.
func (s *ReviewService) ListByBook(ctx context.Context, bookID uint64) ([]*domain.Review, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.store.GetReviewsByBook(ctx, bookID)
}

// DeleteReview removes a single review.
func (s *ReviewService) DeleteReview(ctx context.Context, id uint64) error {
	return s.store.DeleteReview(ctx, id)
}

// DeleteByBook removes every review on a book.
func (s *ReviewService) DeleteByBook(ctx context.Context, bookID uint64) error {
	return s.store.DeleteReviewsByBook(ctx, bookID)
}

// validateStarRating accepts 0-5 in half-star steps.
func validateStarRating(rating float64) error {
	if rating < 0 || rating > domain.MaxRating/2 {
		return store.ErrInvalidInput.WithMessage("rating must be between 0 and 5")
	}
	if math.Mod(rating*2, 1) != 0 {
		return store.ErrInvalidInput.WithMessage("rating must be in half-star steps")
	}
	return nil
}
