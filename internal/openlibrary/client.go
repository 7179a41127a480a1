// Package openlibrary provides a client for the Open Library search and
// cover APIs.
package openlibrary

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Default endpoints. Both are overridable for tests and mirrors.
const (
	DefaultBaseURL      = "https://openlibrary.org"
	DefaultCoverBaseURL = "https://covers.openlibrary.org"
)

// Client provides access to the Open Library search API.
type Client struct {
	baseURL      string
	coverBaseURL string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	logger       *slog.Logger
}

// NewClient creates a new Open Library client. Empty URLs fall back to the
// public endpoints. Requests are politely rate limited; Open Library asks
// bulk users to stay well under 100 requests per minute.
func NewClient(baseURL, coverBaseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if coverBaseURL == "" {
		coverBaseURL = DefaultCoverBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		coverBaseURL: strings.TrimRight(coverBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 request per second, burst of 3
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
	}
}
