package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PlacesClient defines the interface for the external place-data provider.
// The optional lat/lon on TextSearch bias results toward a location.
type PlacesClient interface {
	NearbySearch(ctx context.Context, lat, lon float64, radiusMeters int, keyword string) ([]PlaceRecord, error)
	TextSearch(ctx context.Context, query string, lat, lon *float64) ([]PlaceRecord, error)
	Details(ctx context.Context, placeID string) (*PlaceRecord, error)
}

// VenueRepository defines the boundary to the external venue store.
// Upsert is keyed by provider id; deletion is not this subsystem's concern.
type VenueRepository interface {
	Upsert(ctx context.Context, venue *Venue) error
	GetByProviderID(ctx context.Context, providerID string) (*Venue, error)
}
