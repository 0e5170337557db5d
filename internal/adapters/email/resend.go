package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// maxBatch is the Resend batch API limit per call.
const maxBatch = 100

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender for the given API key.
// PRE: apiKey is a valid Resend key; from is a verified sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		replyTo: replyTo,
	}
}

// Send delivers one message.
// PRE: msg has at least one recipient and a subject
// POST: Message is queued; the Resend message ID is returned
func (s *ResendSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.request(msg))
	if err != nil {
		slog.Error("email_send_failed", "error", err, "to", msg.To, "subject", msg.Subject)
		return Receipt{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("email_sent", "message_id", sent.Id, "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers messages in chunks of at most maxBatch.
// PRE: none
// POST: On error, receipts for the chunks already accepted are returned
func (s *ResendSender) SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error) {
	var receipts []Receipt
	for start := 0; start < len(msgs); start += maxBatch {
		end := min(start+maxBatch, len(msgs))
		params := make([]*resend.SendEmailRequest, 0, end-start)
		for _, m := range msgs[start:end] {
			params = append(params, s.request(m))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, params)
		if err != nil {
			slog.Error("email_batch_failed", "error", err, "batch_size", len(params))
			return receipts, fmt.Errorf("resend batch send: %w", err)
		}
		now := time.Now()
		for _, item := range resp.Data {
			receipts = append(receipts, Receipt{MessageID: item.Id, SentAt: now})
		}
		slog.Info("email_batch_sent", "count", len(params), "total_sent", len(receipts))
	}
	return receipts, nil
}

func (s *ResendSender) request(msg Message) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: s.replyTo,
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = msg.ReplyTo
	}
	return req
}
