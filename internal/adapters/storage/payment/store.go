package payment

import (
	"context"
	"time"

	domain "zefit/internal/domain/payment"
)

// Store persists Payment state. Payments are append-only.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Save(ctx context.Context, value domain.Payment) error
	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
}

// ListFilter narrows payment reads. Time bounds are inclusive instants.
// Results are ordered by paid_at descending.
type ListFilter struct {
	MemberID string
	From     time.Time
	To       time.Time
}
