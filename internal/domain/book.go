// Package domain contains the core business entities and domain logic for
// the Shelfmark personal library.
package domain

import "strings"

// Book is a title in the personal library. Books can be added by hand or
// imported from an Open Library search result, so the same work may enter
// twice; the reconciler merges those after the fact.
type Book struct {
	Timestamps
	ID             uint64        `json:"id"`
	Title          string        `json:"title"`
	Author         string        `json:"author,omitempty"`
	Status         Status        `json:"status"`
	Unread         bool          `json:"unread"`
	Year           int           `json:"year,omitempty"`
	Cover          *Cover        `json:"cover,omitempty"`
	OpenLibraryURL string        `json:"open_library_url,omitempty"`
	Identifiers    *Identifiers  `json:"identifiers,omitempty"`
	Availability   *Availability `json:"availability,omitempty"`

	// Derived lowercase fields for case-insensitive lookup. The store
	// recomputes these on every write; never set them by hand.
	TitleLower  string `json:"title_lower"`
	AuthorLower string `json:"author_lower"`
}

// Normalize recomputes the derived lowercase fields from Title and Author.
func (b *Book) Normalize() {
	b.TitleLower = strings.ToLower(strings.TrimSpace(b.Title))
	b.AuthorLower = strings.ToLower(strings.TrimSpace(b.Author))
}

// MergeFrom backfills missing display data from a duplicate record.
// Only fields the receiver lacks are taken; existing data always wins.
func (b *Book) MergeFrom(dup *Book) bool {
	changed := false

	if !b.Cover.HasImage() && dup.Cover.HasImage() {
		cover := *dup.Cover
		b.Cover = &cover
		changed = true
	}
	if b.OpenLibraryURL == "" && dup.OpenLibraryURL != "" {
		b.OpenLibraryURL = dup.OpenLibraryURL
		changed = true
	}
	if b.Identifiers.Empty() && !dup.Identifiers.Empty() {
		ids := *dup.Identifiers
		b.Identifiers = &ids
		changed = true
	}
	if b.Availability == nil && dup.Availability != nil {
		avail := *dup.Availability
		b.Availability = &avail
		changed = true
	}
	if b.Year == 0 && dup.Year != 0 {
		b.Year = dup.Year
		changed = true
	}

	return changed
}
