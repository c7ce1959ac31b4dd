package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vicino/backend/internal/domain"
)

// Typed is a generic wrapper over a CacheRepository that recovers concrete
// values from the JSON-shaped data both backends hand back. The untyped
// repository keeps doing the storage; Typed only owns the (de)serialization
// contract for one stored shape.
type Typed[T any] struct {
	repo domain.CacheRepository
}

// NewTyped wraps a CacheRepository for values of type T.
func NewTyped[T any](repo domain.CacheRepository) *Typed[T] {
	return &Typed[T]{repo: repo}
}

// Get retrieves and decodes the value stored at key.
func (c *Typed[T]) Get(ctx context.Context, key string) (*T, error) {
	raw, err := c.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Backends return decoded JSON (maps/slices); round-trip through the
	// encoder to land on the concrete type.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, domain.ErrCacheMiss
	}

	return &value, nil
}

// Set stores value at key with the given TTL.
func (c *Typed[T]) Set(ctx context.Context, key string, value *T, ttl time.Duration) error {
	return c.repo.Set(ctx, key, value, ttl)
}

// Delete removes the value stored at key.
func (c *Typed[T]) Delete(ctx context.Context, key string) error {
	return c.repo.Delete(ctx, key)
}
