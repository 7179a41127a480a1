package domain

// ShareMode selects how much of a review is cross-posted to the webhook.
type ShareMode string

// Share modes.
const (
	ShareModeFull    ShareMode = "full"
	ShareModeSummary ShareMode = "summary"
)

// Valid reports whether the share mode is a known value.
func (m ShareMode) Valid() bool {
	return m == ShareModeFull || m == ShareModeSummary
}

// Settings holds the user's persisted preferences.
type Settings struct {
	// DiscordWebhookURL is the webhook reviews are cross-posted to.
	// Empty means sharing is off.
	DiscordWebhookURL string `json:"discord_webhook_url,omitempty"`

	ShareMode ShareMode `json:"share_mode"`
}

// NewSettings returns settings with defaults applied.
func NewSettings() *Settings {
	return &Settings{
		ShareMode: ShareModeFull,
	}
}
