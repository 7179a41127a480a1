package api

import (
	"net/http"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/http/response"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

// ReviewRequest is a review as clients submit it: stars on the 0-5 scale
// in half steps.
type ReviewRequest struct {
	Rating     float64 `json:"rating" validate:"gte=0,lte=5"`
	Text       string  `json:"text" validate:"max=10000"`
	Unread     bool    `json:"unread"`
	Spellcheck bool    `json:"spellcheck"`
	Share      bool    `json:"share"`
}

func (r *ReviewRequest) toInput() service.ReviewInput {
	return service.ReviewInput{
		Rating:     r.Rating,
		Text:       r.Text,
		Unread:     r.Unread,
		Spellcheck: r.Spellcheck,
		Share:      r.Share,
	}
}

// ReviewResponse presents a review with the rating back on the star
// scale. The stored 0-10 value rides along for clients that chart it.
type ReviewResponse struct {
	ID           uint64        `json:"id"`
	BookID       uint64        `json:"book_id"`
	Rating       float64       `json:"rating"`
	RatingStored float64       `json:"rating_stored"`
	Text         string        `json:"text,omitempty"`
	Unread       bool          `json:"unread"`
	Status       domain.Status `json:"status_snapshot,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func newReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:           review.ID,
		BookID:       review.BookID,
		Rating:       review.FiveScale(),
		RatingStored: review.Rating,
		Text:         review.Text,
		Unread:       review.Unread,
		Status:       review.StatusSnapshot,
		CreatedAt:    review.CreatedAt,
		UpdatedAt:    review.UpdatedAt,
	}
}

// ShareResult tells the client what happened to the webhook cross-post.
type ShareResult struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SaveReviewResponse reports the saved review and the share outcome
// separately, so "saved locally but the share failed" is visible.
type SaveReviewResponse struct {
	Review ReviewResponse `json:"review"`
	Share  ShareResult    `json:"share"`
}

func newSaveReviewResponse(outcome *service.SaveOutcome) SaveReviewResponse {
	share := ShareResult{
		Status: string(outcome.Share.Status),
		Reason: outcome.Share.Reason,
	}
	if outcome.Share.Err != nil {
		share.Error = outcome.Share.Err.Error()
	}
	return SaveReviewResponse{
		Review: newReviewResponse(outcome.Review),
		Share:  share,
	}
}

// handleSaveReview upserts the book's primary review (PUT semantics).
func (s *Server) handleSaveReview(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	var req ReviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	outcome, err := s.reviews.SaveReview(r.Context(), id, req.toInput())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, newSaveReviewResponse(outcome), s.logger)
}

// handleAddReview appends a new review to the book.
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	var req ReviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	outcome, err := s.reviews.AddReview(r.Context(), id, req.toInput())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, newSaveReviewResponse(outcome), s.logger)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	reviews, err := s.reviews.ListByBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, newReviewResponse(review))
	}
	response.Success(w, out, s.logger)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid review id", s.logger)
		return
	}

	if err := s.reviews.DeleteReview(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleDeleteBookReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.BadRequest(w, "invalid book id", s.logger)
		return
	}

	if err := s.reviews.DeleteByBook(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}
