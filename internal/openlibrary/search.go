package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

const defaultLimit = 5

// searchFields trims the response to what the tracker displays and stores.
var searchFields = strings.Join([]string{
	"key",
	"title",
	"subtitle",
	"author_name",
	"first_publish_year",
	"publish_year",
	"cover_i",
	"isbn",
	"lccn",
	"oclc",
	"edition_key",
	"availability",
}, ",")

// Search queries the catalog and normalizes each hit. A non-2xx response
// is an error; the caller decides how to surface it.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	searchURL := c.baseURL + "/search.json?" + params.Encode()

	if c.logger != nil {
		c.logger.Debug("searching open library", "query", query, "limit", limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open library responded with status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.UnmarshalRead(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	docs := payload.Docs
	if len(docs) > limit {
		docs = docs[:limit]
	}

	results := make([]SearchResult, 0, len(docs))
	for i := range docs {
		results = append(results, normalizeDoc(c.baseURL, &docs[i]))
	}

	if c.logger != nil {
		c.logger.Debug("open library search results", "query", query, "count", len(results))
	}
	return results, nil
}

// normalizeDoc maps a raw doc into the shape the rest of the app consumes.
func normalizeDoc(baseURL string, d *doc) SearchResult {
	title := d.Title
	if title == "" {
		title = d.Subtitle
	}
	if title == "" {
		title = "Untitled"
	}

	year := d.FirstPublishYear
	if year == 0 && len(d.PublishYear) > 0 {
		year = d.PublishYear[0]
	}

	isbn := ""
	if len(d.ISBN) > 0 {
		isbn = d.ISBN[0]
	}

	workURL := ""
	if d.Key != "" {
		workURL = baseURL + d.Key
	}

	return SearchResult{
		Key:            d.Key,
		Title:          title,
		Author:         strings.Join(compact(d.AuthorName), ", "),
		Year:           year,
		ISBN:           isbn,
		Cover:          deriveCover(d),
		Availability:   normalizeAvailability(baseURL, d),
		OpenLibraryURL: workURL,
		Identifiers:    buildIdentifiers(d),
	}
}

// deriveCover picks the best available cover reference in a fixed fallback
// order: numeric cover id, then ISBN, LCCN, OCLC, edition OLID.
func deriveCover(d *doc) *domain.Cover {
	switch {
	case d.CoverI != 0:
		return &domain.Cover{Source: domain.CoverSourceID, Value: strconv.FormatInt(d.CoverI, 10)}
	case len(d.ISBN) > 0:
		return &domain.Cover{Source: domain.CoverSourceISBN, Value: d.ISBN[0]}
	case len(d.LCCN) > 0:
		return &domain.Cover{Source: domain.CoverSourceLCCN, Value: d.LCCN[0]}
	case len(d.OCLC) > 0:
		return &domain.Cover{Source: domain.CoverSourceOCLC, Value: d.OCLC[0]}
	case len(d.EditionKey) > 0:
		return &domain.Cover{Source: domain.CoverSourceOLID, Value: d.EditionKey[0]}
	}
	return nil
}

func normalizeAvailability(baseURL string, d *doc) *domain.Availability {
	workURL := ""
	if d.Key != "" {
		workURL = baseURL + d.Key
	}

	a := d.Availability
	if a == nil {
		return &domain.Availability{
			Status:  "unknown",
			WorkURL: workURL,
		}
	}

	status := a.Status
	if status == "" {
		status = "unknown"
	}
	if a.OpenLibraryWork != "" {
		workURL = baseURL + a.OpenLibraryWork
	}
	editionURL := ""
	if a.OpenLibraryEdition != "" {
		editionURL = baseURL + a.OpenLibraryEdition
	}

	previewURL := firstNonEmpty(a.PreviewURL, editionURL, workURL)
	borrowURL := firstNonEmpty(a.BorrowURL, editionURL, workURL)

	return &domain.Availability{
		Status:            status,
		IsReadAvailable:   status == "open",
		IsBorrowAvailable: status == "borrow_available",
		PreviewURL:        previewURL,
		BorrowURL:         borrowURL,
		WorkURL:           workURL,
		EditionURL:        editionURL,
		HasDownload:       status == "open" && previewURL != "",
		Identifier:        a.Identifier,
		IdentifierType:    a.IdentifierType,
	}
}

// buildIdentifiers deduplicates each identifier list, preserving order.
func buildIdentifiers(d *doc) *domain.Identifiers {
	ids := &domain.Identifiers{
		ISBN: dedupe(d.ISBN),
		OLID: dedupe(d.EditionKey),
		LCCN: dedupe(d.LCCN),
		OCLC: dedupe(d.OCLC),
	}
	if d.CoverI != 0 {
		ids.CoverID = strconv.FormatInt(d.CoverI, 10)
	}
	if ids.Empty() {
		return nil
	}
	return ids
}

func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
