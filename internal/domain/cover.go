package domain

// CoverSource identifies which Open Library identifier namespace (or raw
// URL) a cover reference points into.
type CoverSource string

// Cover source kinds, in the fallback order the catalog client prefers them.
const (
	CoverSourceID   CoverSource = "id"
	CoverSourceISBN CoverSource = "isbn"
	CoverSourceLCCN CoverSource = "lccn"
	CoverSourceOCLC CoverSource = "oclc"
	CoverSourceOLID CoverSource = "olid"
	CoverSourceURL  CoverSource = "url"
)

// Valid reports whether the source is a known kind.
func (c CoverSource) Valid() bool {
	switch c {
	case CoverSourceID, CoverSourceISBN, CoverSourceLCCN, CoverSourceOCLC, CoverSourceOLID, CoverSourceURL:
		return true
	}
	return false
}

// Cover is a reference to a book cover image.
type Cover struct {
	Source CoverSource `json:"source"`
	Value  string      `json:"value"`
}

// HasImage reports whether the cover reference is complete enough to
// resolve to an image.
func (c *Cover) HasImage() bool {
	return c != nil && c.Source.Valid() && c.Value != ""
}

// Identifiers bundles the catalog identifiers known for a book.
type Identifiers struct {
	CoverID string   `json:"cover_id,omitempty"`
	ISBN    []string `json:"isbn,omitempty"`
	OLID    []string `json:"olid,omitempty"`
	LCCN    []string `json:"lccn,omitempty"`
	OCLC    []string `json:"oclc,omitempty"`
}

// Empty reports whether no identifiers are present.
func (i *Identifiers) Empty() bool {
	if i == nil {
		return true
	}
	return i.CoverID == "" && len(i.ISBN) == 0 && len(i.OLID) == 0 && len(i.LCCN) == 0 && len(i.OCLC) == 0
}

// Availability is a snapshot of lending availability taken from the
// catalog at import time. It is display data, never recomputed locally.
type Availability struct {
	Status            string `json:"status"`
	IsReadAvailable   bool   `json:"is_read_available"`
	IsBorrowAvailable bool   `json:"is_borrow_available"`
	PreviewURL        string `json:"preview_url,omitempty"`
	BorrowURL         string `json:"borrow_url,omitempty"`
	WorkURL           string `json:"work_url,omitempty"`
	EditionURL        string `json:"edition_url,omitempty"`
	HasDownload       bool   `json:"has_download"`
	Identifier        string `json:"identifier,omitempty"`
	IdentifierType    string `json:"identifier_type,omitempty"`
}
