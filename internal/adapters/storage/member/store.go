package member

import (
	"context"
	"time"

	domain "zefit/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByCardCode(ctx context.Context, cardCode string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	NamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

// ListFilter carries filtering parameters for List operations.
// Zero values mean "no constraint". Results are ordered newest first.
type ListFilter struct {
	Status      string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
}
