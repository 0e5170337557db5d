package visit

import (
	"context"
	"time"

	domain "zefit/internal/domain/visit"
)

// Store persists Visit state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Visit, error)
	GetOpenByMember(ctx context.Context, memberID string) (domain.Visit, error)
	Save(ctx context.Context, value domain.Visit) error
	List(ctx context.Context, filter ListFilter) ([]domain.Visit, error)
}

// ListFilter narrows visit reads. Arrival bounds are inclusive instants.
// Results are ordered by arrival descending.
type ListFilter struct {
	MemberID    string
	ArrivedFrom time.Time
	ArrivedTo   time.Time
	OpenOnly    bool
}
