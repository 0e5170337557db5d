package visit

import (
	"errors"
	"strings"
	"time"
)

// PresenceWindow is how long after arrival an open visit still counts as on-premises.
const PresenceWindow = 90 * time.Minute

// Domain errors
var (
	ErrEmptyMemberID          = errors.New("member ID cannot be empty")
	ErrEmptyArrival           = errors.New("arrival time is required")
	ErrDepartureBeforeArrival = errors.New("departure cannot be before arrival")
	ErrAlreadyDeparted        = errors.New("visit already has a departure")
	ErrAlreadyCheckedIn       = errors.New("member is already checked in")
	ErrNotCheckedIn           = errors.New("member has no open visit")
)

// Visit is one arrival (and optional departure) of a member.
type Visit struct {
	ID         string
	MemberID   string
	ArrivedAt  time.Time
	DepartedAt *time.Time // nil while the member is still present
}

// Validate checks if the Visit has valid data.
// PRE: Visit struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: DepartedAt >= ArrivedAt when set
func (v *Visit) Validate() error {
	if strings.TrimSpace(v.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if v.ArrivedAt.IsZero() {
		return ErrEmptyArrival
	}
	if v.DepartedAt != nil && v.DepartedAt.Before(v.ArrivedAt) {
		return ErrDepartureBeforeArrival
	}
	return nil
}

// IsOpen reports whether no departure is recorded.
func (v Visit) IsOpen() bool {
	return v.DepartedAt == nil
}

// IsPresent reports whether the visit counts as currently on-premises:
// open and arrived within PresenceWindow of now.
func (v Visit) IsPresent(now time.Time) bool {
	if !v.IsOpen() {
		return false
	}
	if v.ArrivedAt.After(now) {
		return false
	}
	return now.Sub(v.ArrivedAt) <= PresenceWindow
}

// Depart records the departure time.
// PRE: visit is open, at >= ArrivedAt
// POST: DepartedAt is set
func (v *Visit) Depart(at time.Time) error {
	if !v.IsOpen() {
		return ErrAlreadyDeparted
	}
	if at.Before(v.ArrivedAt) {
		return ErrDepartureBeforeArrival
	}
	v.DepartedAt = &at
	return nil
}
