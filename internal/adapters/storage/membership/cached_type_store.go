package membership

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"zefit/internal/adapters/cache"
	domain "zefit/internal/domain/membership"
	"zefit/internal/domain/money"
)

const typesCacheKey = "membership_types:v1"

// cachedType is the cache encoding of a Type; prices stay in cents.
type cachedType struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	PriceCents   int64  `json:"price_cents"`
}

// CachedTypeStore serves membership types from a cache. Concurrent misses
// are collapsed into one store read; Save invalidates the cached list.
type CachedTypeStore struct {
	next  TypeStore
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedTypeStore wraps next with cache c.
// PRE: next and c are non-nil
// POST: reads are served from c when warm
func NewCachedTypeStore(next TypeStore, c cache.Cache, ttl time.Duration) *CachedTypeStore {
	return &CachedTypeStore{next: next, cache: c, ttl: ttl}
}

// List returns all types ordered by name.
// PRE: none
// POST: Returns the cached list, filling it from the store on a miss
func (s *CachedTypeStore) List(ctx context.Context) ([]domain.Type, error) {
	if b, ok, err := s.cache.Get(ctx, typesCacheKey); err != nil {
		slog.Warn("cache_error", "op", "get", "key", typesCacheKey, "error", err)
	} else if ok {
		if types, err := decodeTypes(b); err == nil {
			return types, nil
		}
	}

	v, err, _ := s.group.Do(typesCacheKey, func() (any, error) {
		types, err := s.next.List(ctx)
		if err != nil {
			return nil, err
		}
		if b, err := encodeTypes(types); err == nil {
			if err := s.cache.Set(ctx, typesCacheKey, b, s.ttl); err != nil {
				slog.Warn("cache_error", "op", "set", "key", typesCacheKey, "error", err)
			}
		}
		return types, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Type), nil
}

// GetByID looks the type up in the cached list.
// PRE: id is non-empty
// POST: Returns the type or a wrapped sql.ErrNoRows
func (s *CachedTypeStore) GetByID(ctx context.Context, id string) (domain.Type, error) {
	types, err := s.List(ctx)
	if err != nil {
		return domain.Type{}, err
	}
	for _, t := range types {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Type{}, fmt.Errorf("membership type not found: %w", sql.ErrNoRows)
}

// Save writes through to the store and drops the cached list.
// PRE: entity has been validated
// POST: Entity is persisted; next List reloads
func (s *CachedTypeStore) Save(ctx context.Context, t domain.Type) error {
	if err := s.next.Save(ctx, t); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, typesCacheKey); err != nil {
		slog.Warn("cache_error", "op", "delete", "key", typesCacheKey, "error", err)
	}
	return nil
}

func encodeTypes(types []domain.Type) ([]byte, error) {
	out := make([]cachedType, len(types))
	for i, t := range types {
		out[i] = cachedType{ID: t.ID, Name: t.Name, DurationDays: t.DurationDays, PriceCents: t.DefaultPrice.Cents()}
	}
	return json.Marshal(out)
}

func decodeTypes(b []byte) ([]domain.Type, error) {
	var in []cachedType
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	out := make([]domain.Type, len(in))
	for i, t := range in {
		out[i] = domain.Type{ID: t.ID, Name: t.Name, DurationDays: t.DurationDays, DefaultPrice: money.FromCents(t.PriceCents)}
	}
	return out, nil
}
