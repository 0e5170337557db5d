// Package email delivers member notifications through an external provider.
package email

import (
	"context"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string // overrides the sender default when set
}

// Receipt is what the provider reports for an accepted message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email. SendBatch returns receipts in request order.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error)
}
