package session

import (
	"errors"
	"strings"
	"time"
)

// Business rule constants
const (
	DefaultDurationMinutes = 60
	MinDurationMinutes     = 10
	DefaultTitle           = "Individual plan"
	DefaultStartClock      = "09:00"
	MaxTitleLength         = 200
	MaxRecurrenceWeeks     = 52
)

// Roster enrollment statuses
const (
	EnrollmentEnrolled = "enrolled"
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("session title cannot be empty")
	ErrTitleTooLong     = errors.New("session title cannot exceed 200 characters")
	ErrEmptyTrainerID   = errors.New("trainer must be selected")
	ErrEmptyStart       = errors.New("session date and time are required")
	ErrEndBeforeStart   = errors.New("session end cannot be before its start")
	ErrDurationTooShort = errors.New("duration must be at least 10 minutes")
	ErrInvalidClock     = errors.New("time must be in HH:MM format")
	ErrInvalidWeekCount = errors.New("week count must be between 1 and 52")
	ErrEmptySessionID   = errors.New("session ID cannot be empty")
	ErrEmptyMemberID    = errors.New("member ID cannot be empty")
	ErrAlreadyEnrolled  = errors.New("member is already enrolled in this session")
	ErrNotFound         = errors.New("session not found")
)

// Session is a scheduled training session owned by a trainer.
type Session struct {
	ID          string
	TrainerID   string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      *time.Time
	TrainerName string // joined from the trainer's member record
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: EndsAt >= StartsAt when set
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(s.TrainerID) == "" {
		return ErrEmptyTrainerID
	}
	if s.StartsAt.IsZero() {
		return ErrEmptyStart
	}
	if s.EndsAt != nil && s.EndsAt.Before(s.StartsAt) {
		return ErrEndBeforeStart
	}
	return nil
}

// DurationMinutes returns the display duration: the span when an end is
// set, else the default. EndsAt is never back-filled.
// INVARIANT: Session fields are not mutated
func (s *Session) DurationMinutes() int {
	if s.EndsAt == nil {
		return DefaultDurationMinutes
	}
	return max(int(s.EndsAt.Sub(s.StartsAt)/time.Minute), 0)
}

// ShiftedWeeks returns a copy moved by n weeks with a cleared ID.
// INVARIANT: Session fields are not mutated
func (s *Session) ShiftedWeeks(n int) Session {
	out := *s
	out.ID = ""
	out.StartsAt = s.StartsAt.AddDate(0, 0, 7*n)
	if s.EndsAt != nil {
		end := s.EndsAt.AddDate(0, 0, 7*n)
		out.EndsAt = &end
	}
	return out
}

// Recurrences returns n independent copies shifted by 1..n weeks.
// PRE: 1 <= n <= MaxRecurrenceWeeks
// POST: Returned sessions have empty IDs; the source is not linked
func (s *Session) Recurrences(n int) ([]Session, error) {
	if n < 1 || n > MaxRecurrenceWeeks {
		return nil, ErrInvalidWeekCount
	}
	out := make([]Session, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.ShiftedWeeks(i))
	}
	return out, nil
}

// CombineDateClock joins a calendar date and an "HH:MM" clock in the date's location.
func CombineDateClock(date time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, ErrInvalidClock
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location()), nil
}

// RosterEntry enrolls a member in a session.
// (SessionID, MemberID) is unique.
type RosterEntry struct {
	ID         string
	SessionID  string
	MemberID   string
	Status     string
	MemberName string // joined from the member record
}

// Validate checks if the RosterEntry has valid data.
// PRE: RosterEntry struct is populated
// POST: Returns nil if valid, error otherwise
func (r *RosterEntry) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return ErrEmptySessionID
	}
	if strings.TrimSpace(r.MemberID) == "" {
		return ErrEmptyMemberID
	}
	return nil
}

// DistinctMembers counts members across entries, each member once.
func DistinctMembers(entries []RosterEntry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.MemberID] = struct{}{}
	}
	return len(seen)
}
