package trainer

import (
	"context"

	domain "zefit/internal/domain/trainer"
)

// Store persists Trainer state. Reads join the member's full name.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Trainer, error)
	GetByMemberID(ctx context.Context, memberID string) (domain.Trainer, error)
	Save(ctx context.Context, value domain.Trainer) error
	List(ctx context.Context) ([]domain.Trainer, error)
}
