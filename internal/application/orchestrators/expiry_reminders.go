package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"
	"time"

	emailAdapter "zefit/internal/adapters/email"
	"zefit/internal/adapters/storage/membership"
	domainMembership "zefit/internal/domain/membership"
)

// ReminderPeriodStore lists the packages a reminder run looks at.
type ReminderPeriodStore interface {
	List(ctx context.Context, filter membership.PeriodFilter) ([]domainMembership.Period, error)
}

// SendExpiryRemindersInput carries input for the orchestrator.
type SendExpiryRemindersInput struct {
	WindowDays int
}

// SendExpiryRemindersResult reports what a reminder run did.
type SendExpiryRemindersResult struct {
	Sent    int
	NoEmail int // members skipped because they have no email address
}

// SendExpiryRemindersDeps holds dependencies for SendExpiryReminders.
type SendExpiryRemindersDeps struct {
	PeriodStore ReminderPeriodStore
	MemberStore MemberLookup
	Sender      emailAdapter.Sender
	Now         func() time.Time
	Location    *time.Location
}

// ExecuteSendExpiryReminders emails every member whose active package ends
// between today and today + WindowDays.
// PRE: WindowDays >= 0
// POST: One message per member with an email address, naming the earliest end date
func ExecuteSendExpiryReminders(ctx context.Context, input SendExpiryRemindersInput, deps SendExpiryRemindersDeps) (SendExpiryRemindersResult, error) {
	if input.WindowDays < 0 {
		return SendExpiryRemindersResult{}, fmt.Errorf("reminder window cannot be negative: %d", input.WindowDays)
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := deps.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	periods, err := deps.PeriodStore.List(ctx, membership.PeriodFilter{
		Status:  domainMembership.StatusActive,
		EndFrom: today,
		EndTo:   today.AddDate(0, 0, input.WindowDays),
	})
	if err != nil {
		return SendExpiryRemindersResult{}, fmt.Errorf("list expiring packages: %w", err)
	}

	earliest := make(map[string]domainMembership.Period)
	for _, p := range periods {
		if p.EndDate == nil {
			continue
		}
		if cur, ok := earliest[p.MemberID]; !ok || p.EndDate.Before(*cur.EndDate) {
			earliest[p.MemberID] = p
		}
	}
	memberIDs := make([]string, 0, len(earliest))
	for id := range earliest {
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	var result SendExpiryRemindersResult
	var msgs []emailAdapter.Message
	for _, id := range memberIDs {
		m, err := deps.MemberStore.GetByID(ctx, id)
		if err != nil {
			return result, fmt.Errorf("load member %s: %w", id, err)
		}
		if strings.TrimSpace(m.Email) == "" {
			result.NoEmail++
			continue
		}
		msgs = append(msgs, reminderMessage(m.Email, m.FullName, earliest[id], loc))
	}
	if len(msgs) == 0 {
		slog.Info("reminder_event", "event", "reminders_skipped", "expiring", len(memberIDs), "no_email", result.NoEmail)
		return result, nil
	}

	receipts, err := deps.Sender.SendBatch(ctx, msgs)
	if err != nil {
		return result, fmt.Errorf("send expiry reminders: %w", err)
	}
	result.Sent = len(receipts)
	slog.Info("reminder_event", "event", "reminders_sent", "sent", result.Sent, "no_email", result.NoEmail, "window_days", input.WindowDays)
	return result, nil
}

func reminderMessage(to, name string, p domainMembership.Period, loc *time.Location) emailAdapter.Message {
	end := p.EndDate.In(loc).Format("02.01.2006")
	label := p.Label()
	text := fmt.Sprintf("Hi %s,\n\nyour %s membership at ZeFit ends on %s. Renew at the front desk to keep training without a break.\n\nZeFit", name, label, end)
	body := fmt.Sprintf("<p>Hi %s,</p><p>your <strong>%s</strong> membership at ZeFit ends on <strong>%s</strong>. Renew at the front desk to keep training without a break.</p><p>ZeFit</p>",
		html.EscapeString(name), html.EscapeString(label), end)
	return emailAdapter.Message{
		To:      []string{to},
		Subject: "Your ZeFit membership ends on " + end,
		HTML:    body,
		Text:    text,
	}
}
