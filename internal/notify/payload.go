package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/openlibrary"
)

// Discord webhook wire types.

type webhookPayload struct {
	Content    string      `json:"content"`
	Embeds     []embed     `json:"embeds"`
	Components []component `json:"components,omitempty"`
}

type embed struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Color       int        `json:"color"`
	Fields      []field    `json:"fields,omitempty"`
	Thumbnail   *thumbnail `json:"thumbnail,omitempty"`
	Footer      footer     `json:"footer"`
	Timestamp   string     `json:"timestamp"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type footer struct {
	Text string `json:"text"`
}

// component is a message component row; the only one sent is a link
// button to the book's Open Library page.
type component struct {
	Type       int      `json:"type"`
	Components []button `json:"components,omitempty"`
}

type button struct {
	Type  int    `json:"type"`
	Style int    `json:"style"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

func buildPayload(msg Message) webhookPayload {
	heading := embedTitle(msg.Book)
	coverURL := openlibrary.CoverURL(msg.Book.Cover, openlibrary.CoverSizeMedium)
	now := time.Now().UTC().Format(time.RFC3339)

	var components []component
	if msg.Book.OpenLibraryURL != "" {
		components = append(components, component{
			Type: 1,
			Components: []button{
				{Type: 2, Style: 5, Label: "Open Library", URL: msg.Book.OpenLibraryURL},
			},
		})
	}

	if msg.ShareMode == domain.ShareModeSummary {
		e := embed{
			Title:       heading,
			Color:       embedColor,
			Description: summaryDescription(msg.Review),
			Footer:      footer{Text: footerText},
			Timestamp:   now,
		}
		if coverURL != "" {
			e.Thumbnail = &thumbnail{URL: coverURL}
		}
		return webhookPayload{Embeds: []embed{e}, Components: components}
	}

	e := embed{
		Title:       heading,
		Description: reviewBody(msg.Review),
		Color:       embedColor,
		Fields: []field{
			{Name: "Rating", Value: "**" + formatRating(msg.Review) + "**", Inline: true},
			{Name: "Status", Value: msg.Book.Status.Label(), Inline: true},
			{Name: "Reactions", Value: reactionLegend(), Inline: false},
		},
		Footer:    footer{Text: footerText},
		Timestamp: now,
	}

	if takes := recentTakes(msg.Recent); takes != "" {
		e.Fields = append(e.Fields, field{Name: "Recent Takes", Value: takes, Inline: false})
	}
	if coverURL != "" {
		e.Thumbnail = &thumbnail{URL: coverURL}
	}
	return webhookPayload{Embeds: []embed{e}, Components: components}
}

func embedTitle(book *domain.Book) string {
	title := book.Title
	if title == "" {
		title = "Untitled"
	}
	if book.Author != "" {
		return title + " by " + book.Author
	}
	return title
}

func reviewBody(review *domain.Review) string {
	if review == nil || strings.TrimSpace(review.Text) == "" {
		return "(No review text provided)"
	}
	return strings.TrimSpace(review.Text)
}

// formatRating renders a 0-10 rating, dropping a trailing .0.
func formatRating(review *domain.Review) string {
	if review == nil {
		return "Rating pending"
	}
	return formatNumber(review.Rating) + "/10"
}

func formatNumber(n float64) string {
	if n == float64(int(n)) {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%.1f", n)
}

// summaryDescription shows the star rating on the 5 scale plus the
// reaction line, for libraries that share without the review body.
func summaryDescription(review *domain.Review) string {
	stars := "Rating pending"
	if review != nil {
		stars = formatNumber(review.FiveScale()) + "/5"
	}

	line := make([]string, len(reactionGuide))
	for i, r := range reactionGuide {
		line[i] = r.emoji + " " + r.label
	}
	return "⭐ " + stars + "\n" + strings.Join(line, " • ")
}

func reactionLegend() string {
	lines := make([]string, len(reactionGuide))
	for i, r := range reactionGuide {
		lines[i] = fmt.Sprintf("%s 0 votes · %s", r.emoji, r.label)
	}
	return strings.Join(lines, "\n")
}

// recentTakes summarizes up to three earlier reviews, truncating each to
// 120 runes.
func recentTakes(recent []*domain.Review) string {
	if len(recent) == 0 {
		return ""
	}
	if len(recent) > maxRecentTakes {
		recent = recent[:maxRecentTakes]
	}

	lines := make([]string, 0, len(recent))
	for _, review := range recent {
		snippet := strings.TrimSpace(review.Text)
		if snippet == "" {
			snippet = "(no text)"
		} else if runes := []rune(snippet); len(runes) > snippetRunes {
			snippet = string(runes[:snippetRunes]) + "…"
		}
		lines = append(lines, fmt.Sprintf("• %s — %s", formatRating(review), snippet))
	}
	return strings.Join(lines, "\n")
}
