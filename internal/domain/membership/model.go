package membership

import (
	"errors"
	"math"
	"strings"
	"time"

	"zefit/internal/domain/money"
)

// Period status constants
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusPending = "pending"
)

// DateLayout is the calendar-date format used for period bounds.
const DateLayout = "2006-01-02"

// DefaultTypeLabel names a period whose type could not be resolved.
const DefaultTypeLabel = "Paket"

// Domain errors
var (
	ErrEmptyTypeName     = errors.New("membership type name cannot be empty")
	ErrNegativeDuration  = errors.New("default duration cannot be negative")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrEmptyMemberID     = errors.New("member ID cannot be empty")
	ErrEmptyTypeID       = errors.New("membership type must be selected")
	ErrEmptyStartDate    = errors.New("start date is required")
	ErrEmptyEndDate      = errors.New("end date is required")
	ErrEndBeforeStart    = errors.New("end date cannot be before start date")
	ErrInvalidStatus     = errors.New("status must be 'active', 'expired' or 'pending'")
	ErrZeroPrice         = errors.New("package price must be a nonzero amount")
	ErrOverlappingPeriod = errors.New("package overlaps an existing package for this member")
)

// Type is a sellable package kind such as "Monthly". Reference data.
type Type struct {
	ID           string
	Name         string
	DurationDays int
	DefaultPrice money.Amount
}

// Validate checks if the Type has valid data.
// PRE: Type struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Type) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTypeName
	}
	if t.DurationDays < 0 {
		return ErrNegativeDuration
	}
	if t.DefaultPrice < 0 {
		return ErrNegativePrice
	}
	return nil
}

// Period is a purchased, dated package instance owned by a member.
// StartDate and EndDate are calendar dates at 00:00 in the gym's location.
type Period struct {
	ID        string
	MemberID  string
	TypeID    string
	TypeName  string // joined from the type; empty when the type is gone
	Price     money.Amount
	StartDate time.Time
	EndDate   *time.Time
	Status    string
}

// Validate checks if the Period has valid data.
// PRE: Period struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: StartDate <= EndDate when EndDate is set
func (p *Period) Validate() error {
	if strings.TrimSpace(p.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if strings.TrimSpace(p.TypeID) == "" {
		return ErrEmptyTypeID
	}
	if p.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return ErrEndBeforeStart
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	switch p.Status {
	case StatusActive, StatusExpired, StatusPending:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// Label returns the type name, or the default label when it is unknown.
// INVARIANT: Period fields are not mutated
func (p *Period) Label() string {
	if p.TypeName == "" {
		return DefaultTypeLabel
	}
	return p.TypeName
}

// IsActive reports whether the period is marked active.
// INVARIANT: Period fields are not mutated
func (p *Period) IsActive() bool {
	return p.Status == StatusActive
}

// Overlaps reports whether two periods share at least one calendar day.
// An open end extends indefinitely.
func (p *Period) Overlaps(other Period) bool {
	if p.EndDate != nil && p.EndDate.Before(other.StartDate) {
		return false
	}
	if other.EndDate != nil && other.EndDate.Before(p.StartDate) {
		return false
	}
	return true
}

// DaysUntilExpiry returns ceil((end - now) / 24h).
// PRE: EndDate is set
// POST: A value <= 0 means the period has expired
func (p *Period) DaysUntilExpiry(now time.Time) int {
	if p.EndDate == nil {
		return 0
	}
	days := p.EndDate.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// ActivePeriod returns the first active period that has an end date.
// Periods are expected most-recent-start first, so this is the latest one.
func ActivePeriod(periods []Period) (Period, bool) {
	for _, p := range periods {
		if p.IsActive() && p.EndDate != nil {
			return p, true
		}
	}
	return Period{}, false
}

// FindOverlap returns the first existing period that overlaps candidate.
func FindOverlap(existing []Period, candidate Period) (Period, bool) {
	for _, p := range existing {
		if p.ID == candidate.ID {
			continue
		}
		if p.Overlaps(candidate) {
			return p, true
		}
	}
	return Period{}, false
}

// ParseDate parses a "2006-01-02" date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// DefaultEndDate returns start + duration days - 1, so a 30 day package
// starting on the 1st ends on the 30th. Returns nil for a zero duration.
func (t *Type) DefaultEndDate(start time.Time) *time.Time {
	if t.DurationDays <= 0 {
		return nil
	}
	end := start.AddDate(0, 0, t.DurationDays-1)
	return &end
}
