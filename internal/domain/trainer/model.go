package trainer

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyMemberID  = errors.New("member ID cannot be empty")
	ErrAlreadyTrainer = errors.New("member is already a trainer")
	ErrNotFound       = errors.New("trainer not found")
)

// Trainer is a member promoted to run training sessions. One per member.
type Trainer struct {
	ID         string
	MemberID   string
	Note       string
	MemberName string // joined from the member record
}

// Validate checks if the Trainer has valid data.
// PRE: Trainer struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.MemberID) == "" {
		return ErrEmptyMemberID
	}
	return nil
}
