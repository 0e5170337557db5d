package orchestrators

import (
	"context"
	"strings"
	"testing"

	"zefit/internal/adapters/email"
	"zefit/internal/domain/member"
	domainMembership "zefit/internal/domain/membership"
)

// TestExecuteSendExpiryReminders verifies who gets a reminder and what it says.
func TestExecuteSendExpiryReminders(t *testing.T) {
	active := domainMembership.StatusActive
	periods := newMockPeriodStore(
		domainMembership.Period{ID: "p1", MemberID: "ana", TypeName: "Monthly", StartDate: day("2025-10-28"), EndDate: dayPtr("2025-11-27"), Status: active},
		domainMembership.Period{ID: "p2", MemberID: "ana", TypeName: "Pilates", StartDate: day("2025-11-01"), EndDate: dayPtr("2025-11-22"), Status: active},
		domainMembership.Period{ID: "p3", MemberID: "bo", StartDate: day("2025-11-01"), EndDate: dayPtr("2025-11-21"), Status: active},
		domainMembership.Period{ID: "p4", MemberID: "cvita", StartDate: day("2025-11-01"), EndDate: dayPtr("2025-12-31"), Status: active},
		domainMembership.Period{ID: "p5", MemberID: "dora", StartDate: day("2025-10-01"), EndDate: dayPtr("2025-11-21"), Status: domainMembership.StatusExpired},
		domainMembership.Period{ID: "p6", MemberID: "ema", StartDate: day("2025-10-01"), EndDate: dayPtr("2025-11-19"), Status: active},
	)
	members := newMockMemberStore(
		member.Member{ID: "ana", FullName: "Ana Anić", Email: "ana@example.com"},
		member.Member{ID: "bo", FullName: "Bo"},
		member.Member{ID: "cvita", FullName: "Cvita", Email: "cvita@example.com"},
		member.Member{ID: "dora", FullName: "Dora", Email: "dora@example.com"},
		member.Member{ID: "ema", FullName: "Ema", Email: "ema@example.com"},
	)
	sender := email.NewNoopSender()

	res, err := ExecuteSendExpiryReminders(context.Background(), SendExpiryRemindersInput{WindowDays: 7}, SendExpiryRemindersDeps{
		PeriodStore: periods, MemberStore: members, Sender: sender, Now: fixedNow, Location: testLoc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 1 || res.NoEmail != 1 {
		t.Errorf("result = %+v, want 1 sent and 1 without email", res)
	}
	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(sent))
	}
	msg := sent[0]
	if msg.To[0] != "ana@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "22.11.2025") || !strings.Contains(msg.Text, "Pilates") {
		t.Errorf("message should name the earliest package: %q / %q", msg.Subject, msg.Text)
	}
	if !strings.Contains(msg.HTML, "Ana Ani&#263;") && !strings.Contains(msg.HTML, "Ana Anić") {
		t.Errorf("HTML = %q", msg.HTML)
	}
}

// TestExecuteSendExpiryReminders_NothingDue verifies no batch is sent when nobody qualifies.
func TestExecuteSendExpiryReminders_NothingDue(t *testing.T) {
	sender := email.NewNoopSender()
	res, err := ExecuteSendExpiryReminders(context.Background(), SendExpiryRemindersInput{WindowDays: 7}, SendExpiryRemindersDeps{
		PeriodStore: newMockPeriodStore(), MemberStore: newMockMemberStore(), Sender: sender, Now: fixedNow, Location: testLoc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 0 || len(sender.Sent()) != 0 {
		t.Errorf("result = %+v, sent = %d; want nothing", res, len(sender.Sent()))
	}
}
