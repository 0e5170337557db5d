package member

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 100
	MaxCardCodeLength = 64
	MaxNoteLength     = 2000
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName         = errors.New("member name cannot be empty")
	ErrNameTooLong       = errors.New("member name cannot exceed 100 characters")
	ErrEmptyCardCode     = errors.New("card code cannot be empty")
	ErrCardCodeTooLong   = errors.New("card code cannot exceed 64 characters")
	ErrInvalidEmail      = errors.New("member email must be valid")
	ErrInvalidStatus     = errors.New("status must be 'active' or 'inactive'")
	ErrNoteTooLong       = errors.New("note cannot exceed 2000 characters")
	ErrDuplicateCardCode = errors.New("card code is already in use")
)

// Member is a gym client. Payments, membership periods and visits hang off it.
type Member struct {
	ID        string
	CardCode  string
	FullName  string
	Phone     string
	Email     string
	Status    string
	Note      string
	CreatedAt time.Time
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email, when present, must contain '@'
func (m *Member) Validate() error {
	if strings.TrimSpace(m.FullName) == "" {
		return ErrEmptyName
	}
	if len(m.FullName) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(m.CardCode) == "" {
		return ErrEmptyCardCode
	}
	if len(m.CardCode) > MaxCardCodeLength {
		return ErrCardCodeTooLong
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return ErrInvalidStatus
	}
	if len(m.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// NormalizeStatus maps a raw status label to a stored status.
// An empty label, "active" and the local "aktivni" map to active; everything
// else is inactive.
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", StatusActive, "aktivni", "aktivan":
		return StatusActive
	default:
		return StatusInactive
	}
}

// MatchesQuery reports whether needle is a case-insensitive substring of haystack.
// An empty needle always matches.
func MatchesQuery(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
