package profile

import (
	"context"

	domain "zefit/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	Save(ctx context.Context, value domain.Profile) error
}
