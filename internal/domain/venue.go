package domain

import "time"

// Category is the domain venue type. The taxonomy is deliberately binary;
// anything that cannot be confirmed as one of the two is not a venue we track.
type Category string

const (
	CategoryCafe       Category = "cafe"
	CategoryRestaurant Category = "restaurant"
)

// ValidCategory reports whether c is one of the known venue categories.
func ValidCategory(c Category) bool {
	return c == CategoryCafe || c == CategoryRestaurant
}

// Venue is the classified, domain-normalized representation of a place.
// Identity is the provider's opaque id; venues are upserted by it on every
// fresh fetch and never hard-deleted by this subsystem.
type Venue struct {
	ProviderID    string         `json:"providerId"`
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	Category      Category       `json:"category"`
	Rating        *float64       `json:"rating,omitempty"`      // 0-5
	RatingCount   *int           `json:"ratingCount,omitempty"` // >= 0
	PriceLevel    *int           `json:"priceLevel,omitempty"`  // 0-4
	Schedule      WeeklySchedule `json:"schedule,omitempty"`
	Photos        []string       `json:"photos,omitempty"`      // opaque photo references
	LastRefreshed time.Time      `json:"lastRefreshed"`
}

// WeeklySchedule is the ordered set of open/close periods for a week.
type WeeklySchedule []Period

// Period is a single open interval. Day follows time.Weekday numbering
// (Sunday = 0). CloseMinute may be nil (open-ended / 24h) and may be
// numerically less than OpenMinute, meaning the period crosses midnight
// into the next day. Multiple periods per day are allowed (split hours).
type Period struct {
	Day         int  `json:"day"`
	OpenMinute  int  `json:"openMinute"`
	CloseMinute *int `json:"closeMinute,omitempty"`
}

// OpenStatus is the live open/closed state computed from a weekly schedule.
// IsOpen is nil when the schedule is unknown.
type OpenStatus struct {
	IsOpen            *bool      `json:"isOpen"`
	Label             string     `json:"label"`
	ClosingSoon       bool       `json:"closingSoon"`
	NextChangeMinutes *int       `json:"nextChangeMinutes,omitempty"`
	NextChangeAt      *time.Time `json:"nextChangeAt,omitempty"`
}

// SearchResult is a transient, ranked venue. Never persisted.
type SearchResult struct {
	Venue          *Venue      `json:"venue"`
	Score          float64     `json:"score"`
	DistanceMeters float64     `json:"distanceMeters"`
	Status         *OpenStatus `json:"status,omitempty"`
}

// ValidCoordinates reports whether lat/lon are in range.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
