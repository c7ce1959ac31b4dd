package usecase

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vicino/backend/internal/domain"
	"github.com/vicino/backend/internal/infrastructure/cache"
	"github.com/vicino/backend/internal/infrastructure/places"
)

// Ranking distance bands. Inside the inner band rating outranks proximity;
// the outer band always sorts before anything beyond it.
const (
	ratingBandMeters   = 300.0
	priorityBandMeters = 500.0
)

// DiscoveryConfig holds tuning for the discovery service.
type DiscoveryConfig struct {
	NearbyTTL     time.Duration
	DetailsTTL    time.Duration
	TextTTL       time.Duration
	DefaultRadius int
	MaxResults    int
}

// DiscoveryService orchestrates the cache, the rate-gated provider client
// and the classifier to answer nearby and text search queries. Cache
// failures degrade to provider calls; provider failures degrade to stored
// data. Only exhausted fallbacks surface an error.
type DiscoveryService struct {
	cacheRepo  domain.CacheRepository
	venueCache *cache.Typed[[]domain.Venue]
	placeCache *cache.Typed[domain.Venue]
	provider   domain.PlacesClient
	venues     domain.VenueRepository
	classifier *Classifier
	hours      *HoursEngine

	nearbyTTL     time.Duration
	detailsTTL    time.Duration
	textTTL       time.Duration
	defaultRadius int
	maxResults    int

	now func() time.Time
}

// NewDiscoveryService creates a discovery service with its dependencies.
func NewDiscoveryService(
	cacheRepo domain.CacheRepository,
	provider domain.PlacesClient,
	venues domain.VenueRepository,
	config DiscoveryConfig,
) *DiscoveryService {
	nearbyTTL := config.NearbyTTL
	if nearbyTTL == 0 {
		nearbyTTL = 24 * time.Hour
	}
	detailsTTL := config.DetailsTTL
	if detailsTTL == 0 {
		detailsTTL = 7 * 24 * time.Hour
	}
	textTTL := config.TextTTL
	if textTTL == 0 {
		textTTL = 12 * time.Hour
	}
	radius := config.DefaultRadius
	if radius <= 0 {
		radius = 1500
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	return &DiscoveryService{
		cacheRepo:     cacheRepo,
		venueCache:    cache.NewTyped[[]domain.Venue](cacheRepo),
		placeCache:    cache.NewTyped[domain.Venue](cacheRepo),
		provider:      provider,
		venues:        venues,
		classifier:    NewClassifier(),
		hours:         NewHoursEngine(),
		nearbyTTL:     nearbyTTL,
		detailsTTL:    detailsTTL,
		textTTL:       textTTL,
		defaultRadius: radius,
		maxResults:    maxResults,
		now:           time.Now,
	}
}

// SearchNearby returns classified venues around a coordinate, ranked by the
// distance/rating policy. Within the TTL window an identical query is
// answered from cache without touching the provider.
func (s *DiscoveryService) SearchNearby(ctx context.Context, lat, lon float64, category domain.Category, radiusMeters, limit int) ([]domain.SearchResult, error) {
	if !domain.ValidCoordinates(lat, lon) {
		return nil, domain.ErrInvalidInput
	}
	if category != "" && !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidInput
	}
	if radiusMeters <= 0 {
		radiusMeters = s.defaultRadius
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	key := cache.NearbyKey(lat, lon, radiusMeters, string(category))
	if cached, err := s.venueCache.Get(ctx, key); err == nil {
		return s.rankNearby(*cached, lat, lon, limit), nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[DISCOVERY] Cache read failed for %s: %v", key, err)
	}

	records, err := s.provider.NearbySearch(ctx, lat, lon, radiusMeters, string(category))
	if err != nil {
		return nil, err
	}

	venues := s.classifyAndStore(ctx, records, category)

	if err := s.venueCache.Set(ctx, key, &venues, s.nearbyTTL); err != nil {
		log.Printf("[DISCOVERY] Cache write failed for %s: %v", key, err)
	}

	return s.rankNearby(venues, lat, lon, limit), nil
}

// SearchByText returns classified venues matching a free-text query,
// optionally biased toward a location.
func (s *DiscoveryService) SearchByText(ctx context.Context, query string, lat, lon *float64, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	if lat != nil && lon != nil && !domain.ValidCoordinates(*lat, *lon) {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	key := cache.TextKey(query, lat, lon)
	if cached, err := s.venueCache.Get(ctx, key); err == nil {
		return s.rankText(*cached, lat, lon, limit), nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[DISCOVERY] Cache read failed for %s: %v", key, err)
	}

	records, err := s.provider.TextSearch(ctx, query, lat, lon)
	if err != nil {
		return nil, err
	}

	venues := s.classifyAndStore(ctx, records, "")

	if err := s.venueCache.Set(ctx, key, &venues, s.textTTL); err != nil {
		log.Printf("[DISCOVERY] Cache write failed for %s: %v", key, err)
	}

	return s.rankText(venues, lat, lon, limit), nil
}

// GetDetails resolves a single venue through the tiers: cache, then a
// fresh-enough stored record, then the provider. A provider failure falls
// back to the stored record whatever its age; the request only fails when
// no tier has data.
func (s *DiscoveryService) GetDetails(ctx context.Context, providerID string) (*domain.SearchResult, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, domain.ErrInvalidInput
	}

	key := cache.DetailsKey(providerID)
	if cached, err := s.venueFromCache(ctx, key); err == nil {
		return s.decorate(cached), nil
	}

	stored, storedErr := s.venues.GetByProviderID(ctx, providerID)
	if storedErr == nil && s.now().Sub(stored.LastRefreshed) < s.detailsTTL {
		return s.decorate(stored), nil
	}

	rec, err := s.provider.Details(ctx, providerID)
	if err != nil {
		if storedErr == nil {
			// Degraded: serve the last-known record rather than failing.
			log.Printf("[DISCOVERY] Provider details failed for %s, serving stored record: %v", providerID, err)
			return s.decorate(stored), nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	venue, err := places.MapVenue(rec, s.now())
	if err != nil {
		if storedErr == nil {
			return s.decorate(stored), nil
		}
		return nil, domain.ErrNotFound
	}

	if cat, included := s.classifier.Classify(rec); included {
		venue.Category = cat
	} else if storedErr == nil {
		// Keep the category the venue was first admitted under.
		venue.Category = stored.Category
	} else {
		// Excluded and never admitted: not a venue we track.
		return nil, domain.ErrNotFound
	}

	if err := s.venues.Upsert(ctx, venue); err != nil {
		log.Printf("[DISCOVERY] Venue upsert failed for %s: %v", providerID, err)
	}
	if err := s.placeCache.Set(ctx, key, venue, s.detailsTTL); err != nil {
		log.Printf("[DISCOVERY] Cache write failed for %s: %v", key, err)
	}

	return s.decorate(venue), nil
}

func (s *DiscoveryService) venueFromCache(ctx context.Context, key string) (*domain.Venue, error) {
	cached, err := s.placeCache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[DISCOVERY] Cache read failed for %s: %v", key, err)
		}
		return nil, err
	}
	return cached, nil
}

// classifyAndStore runs raw records through the classifier, keeping only
// included venues, and upserts them into the venue store. When a category
// filter is set, other categories are dropped from the result.
func (s *DiscoveryService) classifyAndStore(ctx context.Context, records []domain.PlaceRecord, filter domain.Category) []domain.Venue {
	now := s.now()
	venues := make([]domain.Venue, 0, len(records))

	for i := range records {
		rec := &records[i]

		category, included := s.classifier.Classify(rec)
		if !included {
			continue
		}
		if filter != "" && category != filter {
			continue
		}

		venue, err := places.MapVenue(rec, now)
		if err != nil {
			continue
		}
		venue.Category = category

		if err := s.venues.Upsert(ctx, venue); err != nil {
			log.Printf("[DISCOVERY] Venue upsert failed for %s: %v", venue.ProviderID, err)
		}

		venues = append(venues, *venue)
	}

	return venues
}

// rankNearby orders venues by the band policy and decorates them with live
// status. Venues inside the rating band compete on rating; the sub-500m
// band always precedes the rest; everything else is by distance.
func (s *DiscoveryService) rankNearby(venues []domain.Venue, lat, lon float64, limit int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(venues))
	for i := range venues {
		v := venues[i]
		results = append(results, domain.SearchResult{
			Venue:          &v,
			DistanceMeters: Haversine(lat, lon, v.Latitude, v.Longitude),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]

		aBand, bBand := a.DistanceMeters >= priorityBandMeters, b.DistanceMeters >= priorityBandMeters
		if aBand != bBand {
			return !aBand
		}

		if a.DistanceMeters < ratingBandMeters && b.DistanceMeters < ratingBandMeters {
			ra, rb := ratingOf(a.Venue), ratingOf(b.Venue)
			if ra != rb {
				return ra > rb
			}
		}

		return a.DistanceMeters < b.DistanceMeters
	})

	return s.finish(results, limit)
}

// rankText orders text-search results: by the nearby policy when a location
// bias is present, otherwise by rating and review count.
func (s *DiscoveryService) rankText(venues []domain.Venue, lat, lon *float64, limit int) []domain.SearchResult {
	if lat != nil && lon != nil {
		return s.rankNearby(venues, *lat, *lon, limit)
	}

	results := make([]domain.SearchResult, 0, len(venues))
	for i := range venues {
		v := venues[i]
		results = append(results, domain.SearchResult{Venue: &v})
	}

	sort.SliceStable(results, func(i, j int) bool {
		ra, rb := ratingOf(results[i].Venue), ratingOf(results[j].Venue)
		if ra != rb {
			return ra > rb
		}
		return countOf(results[i].Venue) > countOf(results[j].Venue)
	})

	return s.finish(results, limit)
}

// finish truncates after ranking and attaches live open status.
func (s *DiscoveryService) finish(results []domain.SearchResult, limit int) []domain.SearchResult {
	if len(results) > limit {
		results = results[:limit]
	}
	now := s.now()
	for i := range results {
		status := s.hours.Status(results[i].Venue.Schedule, now)
		results[i].Status = &status
	}
	return results
}

func (s *DiscoveryService) decorate(venue *domain.Venue) *domain.SearchResult {
	status := s.hours.Status(venue.Schedule, s.now())
	return &domain.SearchResult{Venue: venue, Status: &status}
}

func ratingOf(v *domain.Venue) float64 {
	if v.Rating == nil {
		return 0
	}
	return *v.Rating
}

func countOf(v *domain.Venue) int {
	if v.RatingCount == nil {
		return 0
	}
	return *v.RatingCount
}

// Haversine returns the great-circle distance in meters between two
// coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMeters = 6371000.0

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
