package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zefit/internal/domain/member"
)

// MemberStore defines the member persistence needed by member orchestrators.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	CardCode string
	FullName string
	Phone    string
	Email    string
	Status   string // raw form value; normalized to active or inactive
	Note     string
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteRegisterMember coordinates member registration.
// PRE: CardCode and FullName are non-empty
// POST: Member created with a generated ID and CreatedAt = now
// INVARIANT: CardCode must be unique (enforced by store)
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	m := member.Member{
		ID:        deps.GenerateID(),
		CardCode:  strings.TrimSpace(input.CardCode),
		FullName:  strings.TrimSpace(input.FullName),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		Status:    member.NormalizeStatus(input.Status),
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: deps.Now(),
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		if errors.Is(err, member.ErrDuplicateCardCode) {
			return member.Member{}, err
		}
		return member.Member{}, fmt.Errorf("register member: %w", err)
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID, "status", m.Status)
	return m, nil
}

// UpdateMemberInput carries input for the orchestrator.
type UpdateMemberInput struct {
	MemberID string
	FullName string
	Phone    string
	Email    string
	Note     string
}

// UpdateMemberDeps holds dependencies for UpdateMember.
type UpdateMemberDeps struct {
	MemberStore MemberStore
}

// ExecuteUpdateMember overwrites a member's contact details.
// PRE: MemberID identifies an existing member
// POST: Name, email, phone and note replaced; last write wins
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps UpdateMemberDeps) (member.Member, error) {
	if input.MemberID == "" {
		return member.Member{}, errors.New("member ID is required")
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, err
	}
	m.FullName = strings.TrimSpace(input.FullName)
	m.Phone = strings.TrimSpace(input.Phone)
	m.Email = strings.TrimSpace(input.Email)
	m.Note = strings.TrimSpace(input.Note)
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, fmt.Errorf("update member %s: %w", m.ID, err)
	}

	slog.Info("member_event", "event", "member_updated", "member_id", m.ID)
	return m, nil
}
