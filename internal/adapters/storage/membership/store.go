package membership

import (
	"context"
	"time"

	domain "zefit/internal/domain/membership"
)

// TypeStore persists membership types.
type TypeStore interface {
	GetByID(ctx context.Context, id string) (domain.Type, error)
	List(ctx context.Context) ([]domain.Type, error)
	Save(ctx context.Context, value domain.Type) error
}

// PeriodStore persists purchased packages.
// Reads join the type name so callers never look it up separately.
type PeriodStore interface {
	GetByID(ctx context.Context, id string) (domain.Period, error)
	Save(ctx context.Context, value domain.Period) error
	List(ctx context.Context, filter PeriodFilter) ([]domain.Period, error)
}

// PeriodFilter carries filtering parameters for period reads.
// Date bounds compare calendar days and are inclusive. Zero means unbounded.
// Results are ordered by start date descending.
type PeriodFilter struct {
	MemberID  string
	Status    string
	StartFrom time.Time
	StartTo   time.Time
	EndFrom   time.Time
	EndTo     time.Time
}
