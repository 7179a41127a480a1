package openlibrary

import (
	"net/url"
	"strings"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// CoverSize selects the rendered cover dimensions.
type CoverSize string

// Cover sizes supported by the covers endpoint.
const (
	CoverSizeSmall  CoverSize = "S"
	CoverSizeMedium CoverSize = "M"
	CoverSizeLarge  CoverSize = "L"
)

// CoverURL resolves a cover reference against the public covers endpoint.
func CoverURL(cover *domain.Cover, size CoverSize) string {
	return coverURL(DefaultCoverBaseURL, cover, size)
}

// CoverURL resolves a cover reference against this client's covers
// endpoint.
func (c *Client) CoverURL(cover *domain.Cover, size CoverSize) string {
	return coverURL(c.coverBaseURL, cover, size)
}

func coverURL(base string, cover *domain.Cover, size CoverSize) string {
	if !cover.HasImage() {
		return ""
	}
	if cover.Source == domain.CoverSourceURL {
		return cover.Value
	}
	if size == "" {
		size = CoverSizeMedium
	}

	kind := url.PathEscape(strings.ToLower(string(cover.Source)))
	value := url.PathEscape(cover.Value)
	return base + "/b/" + kind + "/" + value + "-" + string(size) + ".jpg"
}
