package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them and keeps a copy of
// each for inspection. Used when no provider key is configured.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records the message.
// PRE: none
// POST: Message is appended to Sent()
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	slog.Info("email_noop", "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: fmt.Sprintf("noop-%d", len(s.sent)), SentAt: time.Now()}, nil
}

// SendBatch records every message.
// PRE: none
// POST: Messages are appended to Sent() in order
func (s *NoopSender) SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(msgs))
	for _, m := range msgs {
		r, _ := s.Send(ctx, m)
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// Sent returns a copy of the recorded messages.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
