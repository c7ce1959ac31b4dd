package cache

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key prefixes, one per search category. Each category owns a distinct TTL,
// configured in config.CacheConfig. The version suffix allows invalidating a
// whole category by bumping it.
const (
	prefixNearby  = "nearby_v1"
	prefixDetails = "details_v1"
	prefixText    = "text_v1"
	prefixCity    = "city_v1"
)

// coordPrecision quantizes coordinates to ~110m so that near-identical
// queries collapse to one cache slot.
const coordPrecision = 3

// NearbyKey builds the cache key for a nearby search.
func NearbyKey(lat, lon float64, radiusMeters int, category string) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s",
		prefixNearby, quantize(lat), quantize(lon), radiusMeters, normalizeText(category))
}

// TextKey builds the cache key for a free-text search, with an optional
// location bias.
func TextKey(query string, lat, lon *float64) string {
	key := fmt.Sprintf("%s:%s", prefixText, normalizeText(query))
	if lat != nil && lon != nil {
		key += fmt.Sprintf(":%s:%s", quantize(*lat), quantize(*lon))
	}
	return key
}

// DetailsKey builds the cache key for a place-details fetch.
func DetailsKey(providerID string) string {
	return fmt.Sprintf("%s:%s", prefixDetails, providerID)
}

// CityKey builds the cache key for a city-search prefix.
func CityKey(query string) string {
	return fmt.Sprintf("%s:%s", prefixCity, normalizeText(query))
}

// quantize rounds a coordinate to the fixed precision and renders it with a
// stable number of decimals, so 45.06998 and 45.07001 share a slot.
func quantize(v float64) string {
	factor := math.Pow10(coordPrecision)
	return strconv.FormatFloat(math.Round(v*factor)/factor, 'f', coordPrecision, 64)
}

// normalizeText lowercases, trims and collapses whitespace in free text.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
