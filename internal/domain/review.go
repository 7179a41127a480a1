package domain

import (
	"strconv"
	"strings"
)

// MaxRating is the upper bound of the stored rating scale. Ratings are
// stored on 0-10 even though clients present 0-5 stars with half-star
// steps; the API layer converts.
const MaxRating = 10.0

// MaxReviewsPerBook caps how many reviews the reconciler keeps per book.
const MaxReviewsPerBook = 5

// Review is a rated take on a book. A book may carry several reviews, but
// the legacy single-review save path still treats the most recent one as
// primary.
type Review struct {
	Timestamps
	ID     uint64  `json:"id"`
	BookID uint64  `json:"book_id"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text,omitempty"`
	Unread bool    `json:"unread"`

	// StatusSnapshot mirrors the book's status at the time the review was
	// written. Reconciliation reads it back to recompute book status.
	StatusSnapshot Status `json:"status_snapshot,omitempty"`
}

// ContentKey returns the dedupe key for a review: identical rating plus
// case- and whitespace-insensitive text means the same take.
func (r *Review) ContentKey() string {
	return ratingKey(r.Rating) + "::" + NormalizeText(r.Text)
}

// FiveScale returns the rating converted to the 0-5 star presentation.
func (r *Review) FiveScale() float64 {
	return r.Rating / 2
}

// NormalizeText collapses whitespace and lowercases text for comparison.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func ratingKey(rating float64) string {
	// Ratings only take half-star steps on the 5 scale, so tenths are
	// enough to distinguish them.
	return strconv.Itoa(int(rating*10 + 0.5))
}
