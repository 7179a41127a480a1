// Package search provides full-text search over the personal library
// using Bleve. The index is rebuilt from the store at startup and kept in
// step on every book mutation.
package search

import (
	"strconv"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// Document is the indexed projection of a book. Only what the library
// filter searches on is indexed; full records stay in the store.
type Document struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Status string `json:"status"`
	Year   int    `json:"year,omitempty"`

	// Unix millis, for recency sorting.
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping. Bleve would otherwise index Go field names.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"status":     d.Status,
		"updated_at": d.UpdatedAt,
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	return m
}

// BookDocument projects a book into its indexed form.
func BookDocument(book *domain.Book) *Document {
	return &Document{
		ID:        DocID(book.ID),
		Title:     book.Title,
		Author:    book.Author,
		Status:    string(book.Status),
		Year:      book.Year,
		UpdatedAt: book.UpdatedAt.UnixMilli(),
	}
}

// DocID renders a store identity as an index document ID.
func DocID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ParseDocID converts an index document ID back to a store identity.
func ParseDocID(id string) (uint64, error) {
	return strconv.ParseUint(id, 10, 64)
}
