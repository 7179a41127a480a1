package openlibrary

import "github.com/shelfmarkapp/shelfmark-server/internal/domain"

// searchResponse is the raw payload from /search.json.
type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

// doc is a single raw search result. Open Library returns most identifier
// fields as lists across editions.
type doc struct {
	Key              string           `json:"key"`
	Title            string           `json:"title"`
	Subtitle         string           `json:"subtitle"`
	AuthorName       []string         `json:"author_name"`
	FirstPublishYear int              `json:"first_publish_year"`
	PublishYear      []int            `json:"publish_year"`
	CoverI           int64            `json:"cover_i"`
	ISBN             []string         `json:"isbn"`
	LCCN             []string         `json:"lccn"`
	OCLC             []string         `json:"oclc"`
	EditionKey       []string         `json:"edition_key"`
	Availability     *docAvailability `json:"availability"`
}

type docAvailability struct {
	Status             string `json:"status"`
	PreviewURL         string `json:"preview_url"`
	BorrowURL          string `json:"borrow_url"`
	OpenLibraryWork    string `json:"openlibrary_work"`
	OpenLibraryEdition string `json:"openlibrary_edition"`
	Identifier         string `json:"identifier"`
	IdentifierType     string `json:"identifier_type"`
}

// SearchResult is a search hit normalized into a display-ready shape.
type SearchResult struct {
	Key            string               `json:"key"`
	Title          string               `json:"title"`
	Author         string               `json:"author"`
	Year           int                  `json:"year,omitempty"`
	ISBN           string               `json:"isbn,omitempty"`
	Cover          *domain.Cover        `json:"cover,omitempty"`
	Availability   *domain.Availability `json:"availability"`
	OpenLibraryURL string               `json:"open_library_url,omitempty"`
	Identifiers    *domain.Identifiers  `json:"identifiers,omitempty"`
}
