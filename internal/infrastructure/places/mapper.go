package places

import (
	"strconv"
	"time"

	"github.com/vicino/backend/internal/domain"
)

// MapVenue converts a raw provider record into an unclassified domain venue.
// Records with out-of-range coordinates are rejected outright. The category
// is left for the classifier to assign.
func MapVenue(rec *domain.PlaceRecord, now time.Time) (*domain.Venue, error) {
	lat := rec.Geometry.Location.Lat
	lon := rec.Geometry.Location.Lng
	if !domain.ValidCoordinates(lat, lon) {
		return nil, domain.ErrInvalidInput
	}

	address := rec.FormattedAddress
	if address == "" {
		address = rec.Vicinity
	}

	venue := &domain.Venue{
		ProviderID:    rec.PlaceID,
		Name:          rec.Name,
		Address:       address,
		Latitude:      lat,
		Longitude:     lon,
		Rating:        rec.Rating,
		RatingCount:   rec.UserRatingsTotal,
		PriceLevel:    rec.PriceLevel,
		Schedule:      MapSchedule(rec.OpeningHours),
		LastRefreshed: now,
	}

	for _, photo := range rec.Photos {
		if photo.PhotoReference != "" {
			venue.Photos = append(venue.Photos, photo.PhotoReference)
		}
	}

	return venue, nil
}

// MapSchedule converts the provider's opening-hours periods into a weekly
// schedule. An absent close point means open-ended; a close clock earlier
// than the open clock means the period crosses midnight.
func MapSchedule(hours *domain.ProviderHours) domain.WeeklySchedule {
	if hours == nil || len(hours.Periods) == 0 {
		return nil
	}

	var schedule domain.WeeklySchedule
	for _, p := range hours.Periods {
		open, ok := parseClock(p.Open.Time)
		if !ok {
			continue
		}

		period := domain.Period{
			Day:        p.Open.Day,
			OpenMinute: open,
		}
		if p.Close != nil {
			if closeMin, ok := parseClock(p.Close.Time); ok {
				period.CloseMinute = &closeMin
			}
		}
		schedule = append(schedule, period)
	}

	return schedule
}

// parseClock parses an "HHMM" string into minutes since midnight.
func parseClock(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	hh, err := strconv.Atoi(s[:2])
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(s[2:])
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
