package session

import (
	"context"
	"time"

	domain "zefit/internal/domain/session"
)

// Store persists TrainingSession state. Reads join the trainer's name.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, value domain.Session) error
	List(ctx context.Context, filter ListFilter) ([]domain.Session, error)
	EarliestByTrainer(ctx context.Context, trainerID string) (domain.Session, error)
}

// ListFilter narrows session reads. From is inclusive, To exclusive.
// Results are ordered by start ascending.
type ListFilter struct {
	TrainerID string
	From      time.Time
	To        time.Time
}

// RosterStore persists SessionRosterEntry state. Reads join the member's name.
type RosterStore interface {
	Add(ctx context.Context, entry domain.RosterEntry) error
	Remove(ctx context.Context, sessionID, memberID string) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.RosterEntry, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]domain.RosterEntry, error)
	RemoveMemberFromTrainer(ctx context.Context, trainerID, memberID string) (int64, error)
}
