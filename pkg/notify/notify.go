// Package notify delivers alert messages to a sink. Delivery failures
// are reported to the caller, never escalated further: the scan cycle
// must survive a dead webhook.
package notify

import "context"

// Notifier accepts a text message and reports delivery success or
// failure.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
