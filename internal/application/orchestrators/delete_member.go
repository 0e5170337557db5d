package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zefit/internal/adapters/storage/cascade"
)

// MemberDeleter removes a member together with everything it owns.
type MemberDeleter interface {
	DeleteMember(ctx context.Context, memberID string) ([]cascade.StepResult, error)
}

// DeleteMemberInput carries input for the orchestrator.
type DeleteMemberInput struct {
	MemberID string
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	Deleter MemberDeleter
}

// ExecuteDeleteMember runs the member cascade.
// PRE: MemberID is non-empty
// POST: Trainer sessions and their roster, attendee roster entries, payments,
// periods, visits, the trainer record and the member are gone, or nothing changed
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	if input.MemberID == "" {
		return errors.New("member ID is required")
	}
	results, err := deps.Deleter.DeleteMember(ctx, input.MemberID)
	if err != nil {
		if step := cascade.FailedStep(err); step != "" {
			slog.Error("member_event", "event", "member_delete_failed", "member_id", input.MemberID, "step", step, "error", err)
		}
		return fmt.Errorf("delete member: %w", err)
	}

	slog.Info("member_event", "event", "member_deleted", "member_id", input.MemberID, "rows_removed", rowsRemoved(results))
	return nil
}

func rowsRemoved(results []cascade.StepResult) int64 {
	var n int64
	for _, r := range results {
		n += r.Rows
	}
	return n
}
