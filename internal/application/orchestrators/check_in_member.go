package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zefit/internal/domain/member"
	"zefit/internal/domain/visit"
)

// VisitStore defines the visit persistence needed by check-in and check-out.
type VisitStore interface {
	GetOpenByMember(ctx context.Context, memberID string) (visit.Visit, error)
	Save(ctx context.Context, v visit.Visit) error
}

// MemberLookup resolves the member being checked in.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// CheckInMemberInput carries input for the orchestrator.
type CheckInMemberInput struct {
	MemberID string
}

// CheckInMemberDeps holds dependencies for CheckInMember.
type CheckInMemberDeps struct {
	MemberStore MemberLookup
	VisitStore  VisitStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCheckInMember opens a visit for a member arriving now.
// PRE: MemberID identifies an existing member
// POST: An open visit with ArrivedAt = now exists
// INVARIANT: A member has at most one open visit
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps CheckInMemberDeps) (visit.Visit, error) {
	if input.MemberID == "" {
		return visit.Visit{}, visit.ErrEmptyMemberID
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return visit.Visit{}, err
	}
	if _, err := deps.VisitStore.GetOpenByMember(ctx, m.ID); err == nil {
		return visit.Visit{}, visit.ErrAlreadyCheckedIn
	} else if !errors.Is(err, sql.ErrNoRows) {
		return visit.Visit{}, fmt.Errorf("check in member %s: %w", m.ID, err)
	}

	v := visit.Visit{ID: deps.GenerateID(), MemberID: m.ID, ArrivedAt: deps.Now()}
	if err := v.Validate(); err != nil {
		return visit.Visit{}, err
	}
	if err := deps.VisitStore.Save(ctx, v); err != nil {
		return visit.Visit{}, fmt.Errorf("check in member %s: %w", m.ID, err)
	}
	slog.Info("visit_event", "event", "checked_in", "visit_id", v.ID, "member_id", m.ID)
	return v, nil
}

// CheckOutMemberInput carries input for the orchestrator.
type CheckOutMemberInput struct {
	MemberID string
}

// CheckOutMemberDeps holds dependencies for CheckOutMember.
type CheckOutMemberDeps struct {
	VisitStore VisitStore
	Now        func() time.Time
}

// ExecuteCheckOutMember closes the member's open visit.
// PRE: MemberID has an open visit
// POST: The visit's DepartedAt = now
func ExecuteCheckOutMember(ctx context.Context, input CheckOutMemberInput, deps CheckOutMemberDeps) (visit.Visit, error) {
	if input.MemberID == "" {
		return visit.Visit{}, visit.ErrEmptyMemberID
	}
	v, err := deps.VisitStore.GetOpenByMember(ctx, input.MemberID)
	if errors.Is(err, sql.ErrNoRows) {
		return visit.Visit{}, visit.ErrNotCheckedIn
	}
	if err != nil {
		return visit.Visit{}, fmt.Errorf("check out member %s: %w", input.MemberID, err)
	}
	if err := v.Depart(deps.Now()); err != nil {
		return visit.Visit{}, err
	}
	if err := deps.VisitStore.Save(ctx, v); err != nil {
		return visit.Visit{}, fmt.Errorf("check out member %s: %w", input.MemberID, err)
	}
	slog.Info("visit_event", "event", "checked_out", "visit_id", v.ID, "member_id", v.MemberID)
	return v, nil
}
