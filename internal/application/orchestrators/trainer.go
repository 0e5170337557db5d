package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zefit/internal/adapters/storage/session"
	domainSession "zefit/internal/domain/session"
	"zefit/internal/domain/trainer"
)

// TrainerStore defines the trainer persistence needed by trainer orchestrators.
type TrainerStore interface {
	GetByID(ctx context.Context, id string) (trainer.Trainer, error)
	GetByMemberID(ctx context.Context, memberID string) (trainer.Trainer, error)
	Save(ctx context.Context, t trainer.Trainer) error
}

// SessionStore defines the session persistence needed by trainer and session orchestrators.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (domainSession.Session, error)
	Save(ctx context.Context, s domainSession.Session) error
	EarliestByTrainer(ctx context.Context, trainerID string) (domainSession.Session, error)
}

// RosterStore defines the roster persistence needed by trainer and session orchestrators.
type RosterStore interface {
	Add(ctx context.Context, entry domainSession.RosterEntry) error
	Remove(ctx context.Context, sessionID, memberID string) error
	RemoveMemberFromTrainer(ctx context.Context, trainerID, memberID string) (int64, error)
}

// Compile-time checks against the SQLite stores.
var (
	_ SessionStore = (*session.SQLiteStore)(nil)
	_ RosterStore  = (*session.RosterSQLiteStore)(nil)
)

// --- Promote Trainer ---

// PromoteTrainerInput carries input for the orchestrator.
type PromoteTrainerInput struct {
	MemberID string
	Note     string
}

// PromoteTrainerDeps holds dependencies for PromoteTrainer.
type PromoteTrainerDeps struct {
	TrainerStore TrainerStore
	MemberStore  MemberLookup
	GenerateID   func() string
}

// ExecutePromoteTrainer makes a member a trainer.
// PRE: MemberID identifies an existing member
// POST: A trainer record exists for the member
// INVARIANT: At most one trainer record per member
func ExecutePromoteTrainer(ctx context.Context, input PromoteTrainerInput, deps PromoteTrainerDeps) (trainer.Trainer, error) {
	t := trainer.Trainer{ID: deps.GenerateID(), MemberID: strings.TrimSpace(input.MemberID), Note: strings.TrimSpace(input.Note)}
	if err := t.Validate(); err != nil {
		return trainer.Trainer{}, err
	}
	m, err := deps.MemberStore.GetByID(ctx, t.MemberID)
	if err != nil {
		return trainer.Trainer{}, err
	}
	switch _, err := deps.TrainerStore.GetByMemberID(ctx, m.ID); {
	case err == nil:
		return trainer.Trainer{}, trainer.ErrAlreadyTrainer
	case !errors.Is(err, sql.ErrNoRows):
		return trainer.Trainer{}, fmt.Errorf("look up trainer for member %s: %w", m.ID, err)
	}
	if err := deps.TrainerStore.Save(ctx, t); err != nil {
		if errors.Is(err, trainer.ErrAlreadyTrainer) {
			return trainer.Trainer{}, err
		}
		return trainer.Trainer{}, fmt.Errorf("promote member %s: %w", m.ID, err)
	}
	t.MemberName = m.FullName
	slog.Info("trainer_event", "event", "trainer_promoted", "trainer_id", t.ID, "member_id", m.ID)
	return t, nil
}

// --- Ensure Default Session ---

// EnsureDefaultSessionInput carries input for the orchestrator.
type EnsureDefaultSessionInput struct {
	TrainerID string
}

// EnsureDefaultSessionDeps holds dependencies for EnsureDefaultSession.
type EnsureDefaultSessionDeps struct {
	SessionStore SessionStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteEnsureDefaultSession returns the trainer's earliest session, creating
// an open-ended "Individual plan" starting now when the trainer has none.
// PRE: TrainerID is non-empty
// POST: Returns a persisted session owned by the trainer
func ExecuteEnsureDefaultSession(ctx context.Context, input EnsureDefaultSessionInput, deps EnsureDefaultSessionDeps) (domainSession.Session, error) {
	if input.TrainerID == "" {
		return domainSession.Session{}, domainSession.ErrEmptyTrainerID
	}
	s, err := deps.SessionStore.EarliestByTrainer(ctx, input.TrainerID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domainSession.Session{}, fmt.Errorf("ensure default session for trainer %s: %w", input.TrainerID, err)
	}

	s = domainSession.Session{
		ID:        deps.GenerateID(),
		TrainerID: input.TrainerID,
		Title:     domainSession.DefaultTitle,
		StartsAt:  deps.Now(),
	}
	if err := s.Validate(); err != nil {
		return domainSession.Session{}, err
	}
	if err := deps.SessionStore.Save(ctx, s); err != nil {
		return domainSession.Session{}, fmt.Errorf("ensure default session for trainer %s: %w", input.TrainerID, err)
	}
	slog.Info("session_event", "event", "default_session_created", "session_id", s.ID, "trainer_id", s.TrainerID)
	return s, nil
}

// --- Add / Remove Trainer Member ---

// AddTrainerMemberInput carries input for the orchestrator.
type AddTrainerMemberInput struct {
	TrainerID string
	MemberID  string
}

// AddTrainerMemberDeps holds dependencies for AddTrainerMember.
type AddTrainerMemberDeps struct {
	SessionStore SessionStore
	RosterStore  RosterStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteAddTrainerMember enrolls a member in the trainer's default session.
// PRE: TrainerID and MemberID are non-empty
// POST: The member is on the roster of the trainer's earliest session
func ExecuteAddTrainerMember(ctx context.Context, input AddTrainerMemberInput, deps AddTrainerMemberDeps) (domainSession.RosterEntry, error) {
	if input.MemberID == "" {
		return domainSession.RosterEntry{}, domainSession.ErrEmptyMemberID
	}
	s, err := ExecuteEnsureDefaultSession(ctx, EnsureDefaultSessionInput{TrainerID: input.TrainerID}, EnsureDefaultSessionDeps{
		SessionStore: deps.SessionStore,
		GenerateID:   deps.GenerateID,
		Now:          deps.Now,
	})
	if err != nil {
		return domainSession.RosterEntry{}, err
	}
	return enroll(ctx, s.ID, input.MemberID, deps.RosterStore, deps.GenerateID)
}

// RemoveTrainerMemberInput carries input for the orchestrator.
type RemoveTrainerMemberInput struct {
	TrainerID string
	MemberID  string
}

// RemoveTrainerMemberDeps holds dependencies for RemoveTrainerMember.
type RemoveTrainerMemberDeps struct {
	RosterStore RosterStore
}

// ExecuteRemoveTrainerMember drops a member from every session of the trainer.
// PRE: TrainerID and MemberID are non-empty
// POST: The member has no roster entry in any of the trainer's sessions
func ExecuteRemoveTrainerMember(ctx context.Context, input RemoveTrainerMemberInput, deps RemoveTrainerMemberDeps) (int64, error) {
	if input.TrainerID == "" {
		return 0, domainSession.ErrEmptyTrainerID
	}
	if input.MemberID == "" {
		return 0, domainSession.ErrEmptyMemberID
	}
	n, err := deps.RosterStore.RemoveMemberFromTrainer(ctx, input.TrainerID, input.MemberID)
	if err != nil {
		return 0, fmt.Errorf("remove member %s from trainer %s: %w", input.MemberID, input.TrainerID, err)
	}
	slog.Info("trainer_event", "event", "member_removed", "trainer_id", input.TrainerID, "member_id", input.MemberID, "entries", n)
	return n, nil
}

func enroll(ctx context.Context, sessionID, memberID string, roster RosterStore, generateID func() string) (domainSession.RosterEntry, error) {
	e := domainSession.RosterEntry{
		ID:        generateID(),
		SessionID: sessionID,
		MemberID:  memberID,
		Status:    domainSession.EnrollmentEnrolled,
	}
	if err := e.Validate(); err != nil {
		return domainSession.RosterEntry{}, err
	}
	if err := roster.Add(ctx, e); err != nil {
		if errors.Is(err, domainSession.ErrAlreadyEnrolled) {
			return domainSession.RosterEntry{}, err
		}
		return domainSession.RosterEntry{}, fmt.Errorf("enroll member %s in session %s: %w", memberID, sessionID, err)
	}
	slog.Info("session_event", "event", "member_enrolled", "session_id", sessionID, "member_id", memberID)
	return e, nil
}
