package notify

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// MaxMessageLen keeps payloads under Discord's 2000-character limit
// with headroom.
const MaxMessageLen = 1900

// DiscordNotifier posts messages to a Discord webhook.
type DiscordNotifier struct {
	client  *resty.Client
	webhook string
}

// NewDiscordNotifier creates a notifier for the given webhook URL.
func NewDiscordNotifier(webhook string) *DiscordNotifier {
	return &DiscordNotifier{
		client:  resty.New(),
		webhook: webhook,
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Send posts the message, truncated to MaxMessageLen. Discord replies
// 204 No Content on success.
func (d *DiscordNotifier) Send(ctx context.Context, text string) error {
	if d.webhook == "" {
		return errors.New(errors.ErrCodeNotifierNotConfigured, "no Discord webhook configured")
	}

	runes := []rune(text)
	if len(runes) > MaxMessageLen {
		text = string(runes[:MaxMessageLen])
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Content: text}).
		Post(d.webhook)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "webhook request failed", err)
	}

	if resp.StatusCode() != http.StatusNoContent {
		return errors.Newf(errors.ErrCodeNotificationBadStatus, "webhook returned %s", resp.Status())
	}

	return nil
}
