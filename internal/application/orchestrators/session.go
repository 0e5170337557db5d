package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zefit/internal/adapters/storage/cascade"
	domainSession "zefit/internal/domain/session"
)

// SessionDeleter removes a session together with its roster.
type SessionDeleter interface {
	DeleteSession(ctx context.Context, sessionID string) ([]cascade.StepResult, error)
}

// --- Save Session ---

// SaveSessionInput carries input for the orchestrator. An empty SessionID creates.
type SaveSessionInput struct {
	SessionID       string
	TrainerID       string
	Title           string
	Description     string
	Date            time.Time
	Clock           string // HH:MM
	DurationMinutes int    // 0 means the default duration
}

// SaveSessionDeps holds dependencies for SaveSession.
type SaveSessionDeps struct {
	SessionStore SessionStore
	GenerateID   func() string
	Location     *time.Location
}

// ExecuteSaveSession creates a session or overwrites an existing one.
// PRE: Title, TrainerID, Date and Clock are set; duration is at least 10 minutes
// POST: Session persisted with EndsAt = StartsAt + duration; the trainer may change on edit
func ExecuteSaveSession(ctx context.Context, input SaveSessionInput, deps SaveSessionDeps) (domainSession.Session, error) {
	duration := input.DurationMinutes
	if duration == 0 {
		duration = domainSession.DefaultDurationMinutes
	}
	switch {
	case strings.TrimSpace(input.Title) == "":
		return domainSession.Session{}, domainSession.ErrEmptyTitle
	case strings.TrimSpace(input.TrainerID) == "":
		return domainSession.Session{}, domainSession.ErrEmptyTrainerID
	case input.Date.IsZero() || strings.TrimSpace(input.Clock) == "":
		return domainSession.Session{}, domainSession.ErrEmptyStart
	case duration < domainSession.MinDurationMinutes:
		return domainSession.Session{}, domainSession.ErrDurationTooShort
	}

	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	d := input.Date.In(loc)
	start, err := domainSession.CombineDateClock(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), input.Clock)
	if err != nil {
		return domainSession.Session{}, err
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	s := domainSession.Session{ID: deps.GenerateID()}
	event := "session_created"
	if input.SessionID != "" {
		s, err = deps.SessionStore.GetByID(ctx, input.SessionID)
		if err != nil {
			return domainSession.Session{}, err
		}
		event = "session_updated"
	}
	s.TrainerID = input.TrainerID
	s.Title = strings.TrimSpace(input.Title)
	s.Description = strings.TrimSpace(input.Description)
	s.StartsAt = start
	s.EndsAt = &end
	s.TrainerName = ""

	if err := s.Validate(); err != nil {
		return domainSession.Session{}, err
	}
	if err := deps.SessionStore.Save(ctx, s); err != nil {
		return domainSession.Session{}, fmt.Errorf("save session %s: %w", s.ID, err)
	}
	slog.Info("session_event", "event", event, "session_id", s.ID, "trainer_id", s.TrainerID)
	return s, nil
}

// --- Recurring Sessions ---

// CreateRecurringSessionsInput carries input for the orchestrator.
type CreateRecurringSessionsInput struct {
	SessionID string
	Weeks     int
}

// CreateRecurringSessionsDeps holds dependencies for CreateRecurringSessions.
type CreateRecurringSessionsDeps struct {
	SessionStore SessionStore
	GenerateID   func() string
	Location     *time.Location
}

// ExecuteCreateRecurringSessions copies a session into each of the following weeks.
// PRE: SessionID exists; 1 <= Weeks <= 52
// POST: Weeks new independent sessions, the i-th shifted by i*7 days on the local calendar
func ExecuteCreateRecurringSessions(ctx context.Context, input CreateRecurringSessionsInput, deps CreateRecurringSessionsDeps) ([]domainSession.Session, error) {
	if input.Weeks < 1 || input.Weeks > domainSession.MaxRecurrenceWeeks {
		return nil, domainSession.ErrInvalidWeekCount
	}
	src, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	src.StartsAt = src.StartsAt.In(loc)
	if src.EndsAt != nil {
		end := src.EndsAt.In(loc)
		src.EndsAt = &end
	}

	copies, err := src.Recurrences(input.Weeks)
	if err != nil {
		return nil, err
	}
	for i := range copies {
		copies[i].ID = deps.GenerateID()
		if err := deps.SessionStore.Save(ctx, copies[i]); err != nil {
			return copies[:i], fmt.Errorf("create recurrence %d of session %s: %w", i+1, src.ID, err)
		}
	}
	slog.Info("session_event", "event", "sessions_repeated", "session_id", src.ID, "weeks", input.Weeks)
	return copies, nil
}

// --- Session Roster ---

// SessionMemberInput carries input for the session roster orchestrators.
type SessionMemberInput struct {
	SessionID string
	MemberID  string
}

// AddSessionMemberDeps holds dependencies for AddSessionMember.
type AddSessionMemberDeps struct {
	SessionStore SessionStore
	RosterStore  RosterStore
	GenerateID   func() string
}

// ExecuteAddSessionMember enrolls a member in one session.
// PRE: SessionID exists; MemberID is non-empty
// POST: The member is on the session roster
// INVARIANT: (session, member) is unique
func ExecuteAddSessionMember(ctx context.Context, input SessionMemberInput, deps AddSessionMemberDeps) (domainSession.RosterEntry, error) {
	if input.SessionID == "" {
		return domainSession.RosterEntry{}, domainSession.ErrEmptySessionID
	}
	if input.MemberID == "" {
		return domainSession.RosterEntry{}, domainSession.ErrEmptyMemberID
	}
	s, err := deps.SessionStore.GetByID(ctx, input.SessionID)
	if err != nil {
		return domainSession.RosterEntry{}, err
	}
	return enroll(ctx, s.ID, input.MemberID, deps.RosterStore, deps.GenerateID)
}

// RemoveSessionMemberDeps holds dependencies for RemoveSessionMember.
type RemoveSessionMemberDeps struct {
	RosterStore RosterStore
}

// ExecuteRemoveSessionMember drops a member from one session.
// PRE: SessionID and MemberID are non-empty
// POST: The member is not on the session roster
func ExecuteRemoveSessionMember(ctx context.Context, input SessionMemberInput, deps RemoveSessionMemberDeps) error {
	if input.SessionID == "" {
		return domainSession.ErrEmptySessionID
	}
	if input.MemberID == "" {
		return domainSession.ErrEmptyMemberID
	}
	if err := deps.RosterStore.Remove(ctx, input.SessionID, input.MemberID); err != nil {
		return fmt.Errorf("remove member %s from session %s: %w", input.MemberID, input.SessionID, err)
	}
	slog.Info("session_event", "event", "member_unenrolled", "session_id", input.SessionID, "member_id", input.MemberID)
	return nil
}

// --- Delete Session ---

// DeleteSessionInput carries input for the orchestrator.
type DeleteSessionInput struct {
	SessionID string
}

// DeleteSessionDeps holds dependencies for DeleteSession.
type DeleteSessionDeps struct {
	Deleter SessionDeleter
}

// ExecuteDeleteSession removes a session and its roster together.
// PRE: SessionID is non-empty
// POST: Session and roster gone; a failed roster removal leaves the session intact
func ExecuteDeleteSession(ctx context.Context, input DeleteSessionInput, deps DeleteSessionDeps) error {
	if input.SessionID == "" {
		return errors.New("session ID is required")
	}
	results, err := deps.Deleter.DeleteSession(ctx, input.SessionID)
	if err != nil {
		if step := cascade.FailedStep(err); step != "" {
			slog.Error("session_event", "event", "session_delete_failed", "session_id", input.SessionID, "step", step, "error", err)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("session_event", "event", "session_deleted", "session_id", input.SessionID, "rows_removed", rowsRemoved(results))
	return nil
}
