package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a library search.
type Params struct {
	Query  string
	Status string // exact status filter, empty matches all
	Limit  int
}

const defaultLimit = 50

// Hit is a single library match.
type Hit struct {
	BookID uint64  `json:"book_id"`
	Score  float64 `json:"score"`
}

// Search runs a query against the library index and returns matching book
// identities, best match first.
func (i *Index) Search(ctx context.Context, params Params) ([]Hit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	req.SortBy([]string{"-_score", "-updated_at"})

	result, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := ParseDocID(hit.ID)
		if err != nil {
			return nil, fmt.Errorf("parse hit id %q: %w", hit.ID, err)
		}
		hits = append(hits, Hit{BookID: id, Score: hit.Score})
	}
	return hits, nil
}

// buildQuery matches the text against title and author, with a fuzzy
// variant for typo tolerance and a prefix variant so partial titles match
// while typing.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("author")
		authorMatch.SetBoost(1.5)

		text := []query.Query{titleMatch, authorMatch}

		fuzzy := bleve.NewFuzzyQuery(params.Query)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if len(params.Query) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if params.Status != "" {
		statusQuery := bleve.NewTermQuery(params.Status)
		statusQuery.SetField("status")
		queries = append(queries, statusQuery)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
