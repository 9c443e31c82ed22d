// Package email provides outbound email delivery for notifications.
package email

import "context"

// Sender delivers a plain-text email to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
