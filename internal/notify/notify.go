// Package notify cross-posts reviews to a Discord webhook. Posting is
// best-effort: failures come back in the Result and never as an error, so
// a dead webhook can not break a save.
package notify

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

// Status tags the outcome of a webhook post.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// Result reports what happened to a post. Err is only set for StatusError.
type Result struct {
	Status Status
	Reason string
	Err    error
}

// Message is a review share. Recent carries earlier takes on the same
// book, most recent first; at most three are included in the embed.
type Message struct {
	Book      *domain.Book
	Review    *domain.Review
	Recent    []*domain.Review
	ShareMode domain.ShareMode
}

const (
	embedColor     = 0xff7a2a
	footerText     = "made with love by zayd / cold"
	snippetRunes   = 120
	maxRecentTakes = 3
)

type reaction struct {
	emoji string
	label string
}

// reactionGuide is the fixed voting legend readers react with.
var reactionGuide = []reaction{
	{"1️⃣", "Loved it"},
	{"2️⃣", "Pretty good"},
	{"3️⃣", "Take it or leave it"},
	{"4️⃣", "Not for me"},
	{"\U0001f195", "Interested"},
}

// Notifier posts review embeds to Discord webhooks.
type Notifier struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Post sends the message to the webhook. An empty webhook URL skips the
// post without a network call.
func (n *Notifier) Post(ctx context.Context, webhookURL string, msg Message) Result {
	if webhookURL == "" {
		return Result{Status: StatusSkipped, Reason: "missing webhook"}
	}

	payload := buildPayload(msg)
	body, err := json.Marshal(payload)
	if err != nil {
		return n.fail(fmt.Errorf("marshal webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return n.fail(fmt.Errorf("create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return n.fail(fmt.Errorf("post webhook: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return n.fail(fmt.Errorf("discord responded with status %d", resp.StatusCode))
	}

	if n.logger != nil {
		n.logger.Info("review posted to discord", "book_id", msg.Book.ID)
	}
	return Result{Status: StatusSent}
}

func (n *Notifier) fail(err error) Result {
	if n.logger != nil {
		n.logger.Warn("discord post failed", "error", err)
	}
	return Result{Status: StatusError, Err: err}
}
