package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vicino/backend/internal/domain"
	"github.com/vicino/backend/internal/infrastructure/cache"
)

// Roughly one meter of latitude in degrees at any longitude.
const latDegreePerMeter = 1.0 / 111194.9

type fakeProvider struct {
	nearbyCalls int
	textCalls   int
	detailCalls int

	records []domain.PlaceRecord
	detail  *domain.PlaceRecord
	err     error
}

func (f *fakeProvider) NearbySearch(ctx context.Context, lat, lon float64, radiusMeters int, keyword string) ([]domain.PlaceRecord, error) {
	f.nearbyCalls++
	return f.records, f.err
}

func (f *fakeProvider) TextSearch(ctx context.Context, query string, lat, lon *float64) ([]domain.PlaceRecord, error) {
	f.textCalls++
	return f.records, f.err
}

func (f *fakeProvider) Details(ctx context.Context, placeID string) (*domain.PlaceRecord, error) {
	f.detailCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.detail == nil {
		return nil, domain.ErrNotFound
	}
	return f.detail, nil
}

type fakeVenueRepo struct {
	venues map[string]*domain.Venue
}

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{venues: make(map[string]*domain.Venue)}
}

func (f *fakeVenueRepo) Upsert(ctx context.Context, venue *domain.Venue) error {
	if venue.ProviderID == "" {
		return domain.ErrInvalidInput
	}
	copied := *venue
	f.venues[venue.ProviderID] = &copied
	return nil
}

func (f *fakeVenueRepo) GetByProviderID(ctx context.Context, providerID string) (*domain.Venue, error) {
	v, ok := f.venues[providerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func placeRecord(id, name string, lat, lon float64, tags []string, rating float64) domain.PlaceRecord {
	rec := domain.PlaceRecord{
		PlaceID:  id,
		Name:     name,
		Vicinity: "Via Roma 1",
		Types:    tags,
	}
	rec.Geometry.Location.Lat = lat
	rec.Geometry.Location.Lng = lon
	if rating > 0 {
		rec.Rating = &rating
	}
	return rec
}

func newTestService(provider domain.PlacesClient) (*DiscoveryService, *fakeVenueRepo) {
	repo := newFakeVenueRepo()
	svc := NewDiscoveryService(cache.NewMemoryCache(), provider, repo, DiscoveryConfig{})
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestSearchNearby_InvalidCoordinates(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude too high", 91, 0},
		{"latitude too low", -91, 0},
		{"longitude too high", 0, 181},
		{"longitude too low", 0, -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SearchNearby(context.Background(), tt.lat, tt.lon, "", 0, 0)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if provider.nearbyCalls != 0 {
		t.Errorf("provider called %d times for invalid input", provider.nearbyCalls)
	}
}

func TestSearchNearby_CacheShortCircuitsProvider(t *testing.T) {
	provider := &fakeProvider{
		records: []domain.PlaceRecord{
			placeRecord("p1", "Trattoria Da Gigi", 45.07, 7.68, []string{"restaurant"}, 4.2),
		},
	}
	svc, _ := newTestService(provider)

	ctx := context.Background()
	first, err := svc.SearchNearby(ctx, 45.07, 7.68, domain.CategoryRestaurant, 1000, 10)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := svc.SearchNearby(ctx, 45.07, 7.68, domain.CategoryRestaurant, 1000, 10)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	if provider.nearbyCalls != 1 {
		t.Errorf("provider called %d times, want 1", provider.nearbyCalls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("result lengths = %d, %d, want 1, 1", len(first), len(second))
	}
	if second[0].Venue.ProviderID != "p1" {
		t.Errorf("cached result ProviderID = %q", second[0].Venue.ProviderID)
	}
}

func TestSearchNearby_CategoryFilter(t *testing.T) {
	provider := &fakeProvider{
		records: []domain.PlaceRecord{
			placeRecord("r1", "Osteria del Borgo", 45.07, 7.68, []string{"restaurant"}, 4.0),
			placeRecord("c1", "Caffè Torino", 45.071, 7.681, []string{"cafe"}, 4.5),
			placeRecord("x1", "Hotel Ligure", 45.072, 7.682, []string{"lodging"}, 4.8),
		},
	}
	svc, repo := newTestService(provider)

	results, err := svc.SearchNearby(context.Background(), 45.07, 7.68, domain.CategoryCafe, 1000, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) != 1 || results[0].Venue.ProviderID != "c1" {
		t.Fatalf("results = %+v, want only c1", results)
	}

	// Excluded records never reach the store.
	if _, err := repo.GetByProviderID(context.Background(), "x1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("excluded venue was stored")
	}
}

func TestSearchNearby_RatingWinsInsideInnerBand(t *testing.T) {
	const lat, lon = 45.0, 7.68
	provider := &fakeProvider{
		records: []domain.PlaceRecord{
			placeRecord("near", "Pizzeria Vicina", lat+250*latDegreePerMeter, lon, []string{"restaurant"}, 4.0),
			placeRecord("far", "Pizzeria Migliore", lat+280*latDegreePerMeter, lon, []string{"restaurant"}, 4.8),
		},
	}
	svc, _ := newTestService(provider)

	results, err := svc.SearchNearby(context.Background(), lat, lon, domain.CategoryRestaurant, 1000, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Venue.ProviderID != "far" {
		t.Errorf("first result = %q, want the higher-rated venue within the inner band", results[0].Venue.ProviderID)
	}
}

func TestSearchNearby_OuterBandBeatsRating(t *testing.T) {
	const lat, lon = 45.0, 7.68
	provider := &fakeProvider{
		records: []domain.PlaceRecord{
			placeRecord("mid", "Bar Medio", lat+400*latDegreePerMeter, lon, []string{"cafe"}, 3.0),
			placeRecord("out", "Bar Stellato", lat+600*latDegreePerMeter, lon, []string{"cafe"}, 5.0),
		},
	}
	svc, _ := newTestService(provider)

	results, err := svc.SearchNearby(context.Background(), lat, lon, domain.CategoryCafe, 1000, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Venue.ProviderID != "mid" {
		t.Errorf("first result = %q, want the sub-500m venue regardless of rating", results[0].Venue.ProviderID)
	}
}

func TestSearchNearby_LimitAppliedAfterRanking(t *testing.T) {
	const lat, lon = 45.0, 7.68
	provider := &fakeProvider{
		records: []domain.PlaceRecord{
			placeRecord("a", "Ristorante Alfa", lat+700*latDegreePerMeter, lon, []string{"restaurant"}, 4.9),
			placeRecord("b", "Ristorante Beta", lat+100*latDegreePerMeter, lon, []string{"restaurant"}, 3.5),
			placeRecord("c", "Ristorante Gamma", lat+900*latDegreePerMeter, lon, []string{"restaurant"}, 4.0),
		},
	}
	svc, _ := newTestService(provider)

	results, err := svc.SearchNearby(context.Background(), lat, lon, domain.CategoryRestaurant, 1500, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	// The closest venue survives the cut even though others rate higher.
	if results[0].Venue.ProviderID != "b" {
		t.Errorf("surviving result = %q, want b", results[0].Venue.ProviderID)
	}
}

func TestSearchNearby_ProviderErrorSurfaces(t *testing.T) {
	provider := &fakeProvider{err: domain.ErrRateLimited}
	svc, _ := newTestService(provider)

	_, err := svc.SearchNearby(context.Background(), 45.07, 7.68, "", 0, 0)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
}

func TestSearchByText_EmptyQuery(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.SearchByText(context.Background(), "   ", nil, nil, 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if provider.textCalls != 0 {
		t.Errorf("provider called for empty query")
	}
}

func TestSearchByText_RanksByRatingWithoutBias(t *testing.T) {
	provider := &fakeProvider{
		records: []domain.PlaceRecord{
			placeRecord("low", "Pizzeria Uno", 45.07, 7.68, []string{"restaurant"}, 3.9),
			placeRecord("high", "Pizzeria Due", 45.08, 7.69, []string{"restaurant"}, 4.7),
		},
	}
	svc, _ := newTestService(provider)

	results, err := svc.SearchByText(context.Background(), "pizzeria", nil, nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Venue.ProviderID != "high" {
		t.Errorf("first result = %q, want the higher-rated venue", results[0].Venue.ProviderID)
	}
}

func TestGetDetails_FreshStoredRecordSkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc, repo := newTestService(provider)

	repo.venues["p1"] = &domain.Venue{
		ProviderID:    "p1",
		Name:          "Trattoria Da Gigi",
		Latitude:      45.07,
		Longitude:     7.68,
		Category:      domain.CategoryRestaurant,
		LastRefreshed: svc.now().Add(-time.Hour),
	}

	result, err := svc.GetDetails(context.Background(), "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if provider.detailCalls != 0 {
		t.Errorf("provider called %d times for a fresh stored record", provider.detailCalls)
	}
	if result.Venue.Name != "Trattoria Da Gigi" {
		t.Errorf("Name = %q", result.Venue.Name)
	}
	if result.Status == nil {
		t.Error("missing open status")
	}
}

func TestGetDetails_ProviderFailureFallsBackToStaleRecord(t *testing.T) {
	provider := &fakeProvider{err: domain.ErrProviderUnavailable}
	svc, repo := newTestService(provider)

	repo.venues["p1"] = &domain.Venue{
		ProviderID:    "p1",
		Name:          "Caffè Centrale",
		Latitude:      45.07,
		Longitude:     7.68,
		Category:      domain.CategoryCafe,
		LastRefreshed: svc.now().Add(-30 * 24 * time.Hour),
	}

	result, err := svc.GetDetails(context.Background(), "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if provider.detailCalls != 1 {
		t.Errorf("provider called %d times, want 1", provider.detailCalls)
	}
	if result.Venue.Name != "Caffè Centrale" {
		t.Errorf("Name = %q, want the stale stored record", result.Venue.Name)
	}
}

func TestGetDetails_RefreshesStaleRecordFromProvider(t *testing.T) {
	rec := placeRecord("p1", "Caffè Centrale Nuovo", 45.07, 7.68, []string{"cafe"}, 4.3)
	provider := &fakeProvider{detail: &rec}
	svc, repo := newTestService(provider)

	repo.venues["p1"] = &domain.Venue{
		ProviderID:    "p1",
		Name:          "Caffè Centrale",
		Latitude:      45.07,
		Longitude:     7.68,
		Category:      domain.CategoryCafe,
		LastRefreshed: svc.now().Add(-30 * 24 * time.Hour),
	}

	result, err := svc.GetDetails(context.Background(), "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if result.Venue.Name != "Caffè Centrale Nuovo" {
		t.Errorf("Name = %q, want the refreshed record", result.Venue.Name)
	}

	stored, err := repo.GetByProviderID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if stored.Name != "Caffè Centrale Nuovo" {
		t.Errorf("stored Name = %q, want the refreshed record", stored.Name)
	}
}

func TestGetDetails_ExcludedRecordIsNotAdmitted(t *testing.T) {
	rec := placeRecord("h1", "Hotel Bellavista", 45.07, 7.68, []string{"lodging"}, 4.6)
	provider := &fakeProvider{detail: &rec}
	svc, repo := newTestService(provider)

	_, err := svc.GetDetails(context.Background(), "h1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound for an excluded record", err)
	}

	if _, err := repo.GetByProviderID(context.Background(), "h1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("excluded record was stored")
	}
}

func TestGetDetails_ExcludedRefreshKeepsAdmittedCategory(t *testing.T) {
	// A venue admitted earlier whose refresh now classifies as excluded
	// keeps its original category rather than being dropped.
	rec := placeRecord("p1", "Gran Caffè Hotel Royal", 45.07, 7.68, []string{"cafe", "lodging"}, 4.1)
	provider := &fakeProvider{detail: &rec}
	svc, repo := newTestService(provider)

	repo.venues["p1"] = &domain.Venue{
		ProviderID:    "p1",
		Name:          "Gran Caffè",
		Latitude:      45.07,
		Longitude:     7.68,
		Category:      domain.CategoryCafe,
		LastRefreshed: svc.now().Add(-30 * 24 * time.Hour),
	}

	result, err := svc.GetDetails(context.Background(), "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if result.Venue.Category != domain.CategoryCafe {
		t.Errorf("Category = %q, want the admitted category", result.Venue.Category)
	}
}

func TestGetDetails_UnknownEverywhere(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.GetDetails(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetDetails_EmptyID(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.GetDetails(context.Background(), "  ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestHaversine(t *testing.T) {
	// Turin city centre to Porta Nuova station, roughly 900m.
	d := Haversine(45.0703, 7.6869, 45.0625, 7.6784)
	if d < 800 || d > 1200 {
		t.Errorf("distance = %.0f m, want roughly 1 km", d)
	}

	if d := Haversine(45.07, 7.68, 45.07, 7.68); d != 0 {
		t.Errorf("zero distance = %f", d)
	}
}
