package domain

// PlaceRecord is the raw place data returned by the external place-data
// provider. Field names follow the provider's wire format; nothing in here
// is interpreted until the classifier and mapper have had a pass.
type PlaceRecord struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	Vicinity         string          `json:"vicinity,omitempty"`
	FormattedAddress string          `json:"formatted_address,omitempty"`
	Geometry         Geometry        `json:"geometry"`
	Types            []string        `json:"types"`
	Rating           *float64        `json:"rating,omitempty"`
	UserRatingsTotal *int            `json:"user_ratings_total,omitempty"`
	PriceLevel       *int            `json:"price_level,omitempty"`
	BusinessStatus   string          `json:"business_status,omitempty"`
	OpeningHours     *ProviderHours  `json:"opening_hours,omitempty"`
	Photos           []ProviderPhoto `json:"photos,omitempty"`
	Phone            string          `json:"formatted_phone_number,omitempty"`
	Website          string          `json:"website,omitempty"`
}

// Geometry holds the provider's location envelope.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a provider coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ProviderHours is the provider's opening-hours block.
type ProviderHours struct {
	OpenNow *bool            `json:"open_now,omitempty"`
	Periods []ProviderPeriod `json:"periods,omitempty"`
}

// ProviderPeriod is one open interval on the wire. Close is absent for
// open-ended (24h) periods.
type ProviderPeriod struct {
	Open  ProviderTimePoint  `json:"open"`
	Close *ProviderTimePoint `json:"close,omitempty"`
}

// ProviderTimePoint is a day + "HHMM" clock string, e.g. {2, "2230"}.
type ProviderTimePoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// ProviderPhoto is an opaque photo reference from the provider.
type ProviderPhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

// PlacesSearchResponse is the provider's envelope for nearby and text search.
type PlacesSearchResponse struct {
	Results      []PlaceRecord `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// PlaceDetailsResponse is the provider's envelope for a details fetch.
type PlaceDetailsResponse struct {
	Result       PlaceRecord `json:"result"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
}
