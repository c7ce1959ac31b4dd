package store

import (
	"context"
	"sync"

	"github.com/vicino/backend/internal/domain"
)

// MemoryVenueStore is an in-process VenueRepository, used in development and
// tests where no relational store is wired.
type MemoryVenueStore struct {
	mu     sync.RWMutex
	venues map[string]domain.Venue
}

// NewMemoryVenueStore creates an empty in-memory venue store.
func NewMemoryVenueStore() *MemoryVenueStore {
	return &MemoryVenueStore{venues: make(map[string]domain.Venue)}
}

// Upsert stores or replaces a venue keyed by provider id.
func (s *MemoryVenueStore) Upsert(ctx context.Context, venue *domain.Venue) error {
	if venue == nil || venue.ProviderID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.venues[venue.ProviderID] = *venue
	return nil
}

// GetByProviderID returns the stored venue or ErrNotFound.
func (s *MemoryVenueStore) GetByProviderID(ctx context.Context, providerID string) (*domain.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	venue, ok := s.venues[providerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &venue, nil
}

// Size returns the number of stored venues (for debugging/monitoring)
func (s *MemoryVenueStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.venues)
}
