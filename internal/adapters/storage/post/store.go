package post

import (
	"context"

	domain "zefit/internal/domain/post"
)

// Store persists Post state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Post, error)
	Save(ctx context.Context, value domain.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Post, error)
}
