package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vicino/backend/internal/domain"
	"github.com/vicino/backend/internal/infrastructure/cache"
	"github.com/vicino/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	discovery    *usecase.DiscoveryService
	orchestrator *usecase.SearchOrchestrator
	cities       *usecase.CityIndex

	cityCache *cache.Typed[[]domain.CityRecord]
	cityTTL   time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	discovery *usecase.DiscoveryService,
	orchestrator *usecase.SearchOrchestrator,
	cities *usecase.CityIndex,
	cacheRepo domain.CacheRepository,
	cityTTL time.Duration,
) *Handler {
	if cityTTL == 0 {
		cityTTL = time.Hour
	}
	return &Handler{
		discovery:    discovery,
		orchestrator: orchestrator,
		cities:       cities,
		cityCache:    cache.NewTyped[[]domain.CityRecord](cacheRepo),
		cityTTL:      cityTTL,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vicino-backend",
		"version": "1.0.0",
	})
}

// SearchNearby handles GET /api/v1/places/nearby
func (h *Handler) SearchNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		respondError(c, domain.ErrInvalidInput, "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		respondError(c, domain.ErrInvalidInput, "lon must be a number")
		return
	}

	category := domain.Category(c.Query("category"))
	radius := intQuery(c, "radius", 0)
	limit := intQuery(c, "limit", 0)

	results, err := h.discovery.SearchNearby(c.Request.Context(), lat, lon, category, radius, limit)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// SearchByText handles GET /api/v1/places/search
func (h *Handler) SearchByText(c *gin.Context) {
	query := c.Query("q")
	limit := intQuery(c, "limit", 0)

	lat, lon, ok := optionalCoordinates(c)
	if !ok {
		respondError(c, domain.ErrInvalidInput, "lat and lon must be numbers and given together")
		return
	}

	results, err := h.discovery.SearchByText(c.Request.Context(), query, lat, lon, limit)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// GetPlace handles GET /api/v1/places/:id
func (h *Handler) GetPlace(c *gin.Context) {
	result, err := h.discovery.GetDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// cityLookupCap bounds how many matches a city lookup returns. The full
// capped list is what gets cached; per-request limits slice it on read.
const cityLookupCap = 50

// SearchCities handles GET /api/v1/cities/search. The gazetteer is static,
// so the full lookup result is cached keyed by normalized query alone.
func (h *Handler) SearchCities(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, domain.ErrInvalidInput, "q is required")
		return
	}
	limit := intQuery(c, "limit", 10)
	if limit > cityLookupCap {
		limit = cityLookupCap
	}

	key := cache.CityKey(query)
	var results []domain.CityRecord
	if cached, err := h.cityCache.Get(c.Request.Context(), key); err == nil {
		results = *cached
	} else {
		results = h.cities.Lookup(query, cityLookupCap)
		if results == nil {
			results = []domain.CityRecord{}
		}
		if err := h.cityCache.Set(c.Request.Context(), key, &results, h.cityTTL); err != nil {
			log.Printf("[HTTP] City cache write failed for %s: %v", key, err)
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// SearchPlacesInCity handles GET /api/v1/cities/:id/places
func (h *Handler) SearchPlacesInCity(c *gin.Context) {
	city, ok := h.cities.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown city"})
		return
	}

	query := c.Query("q")
	limit := intQuery(c, "limit", 0)

	results, err := h.orchestrator.SearchInCity(c.Request.Context(), query, city, limit)
	if err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"city":    city,
		"results": results,
		"count":   len(results),
	})
}

// respondError maps domain errors onto HTTP statuses. An optional detail
// overrides the error's own message for clearer client feedback.
func respondError(c *gin.Context, err error, detail string) {
	message := err.Error()
	if detail != "" {
		message = detail
	}
	c.JSON(statusForError(err), gin.H{"error": message})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// optionalCoordinates parses the lat/lon pair when present. Both must be
// given together; a lone or malformed value fails the request.
func optionalCoordinates(c *gin.Context) (*float64, *float64, bool) {
	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if rawLat == "" && rawLon == "" {
		return nil, nil, true
	}
	if rawLat == "" || rawLon == "" {
		return nil, nil, false
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, nil, false
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return nil, nil, false
	}
	return &lat, &lon, true
}
