package domain

// CityRecord is one entry of the static city gazetteer. Records are loaded
// once at startup and never mutated at runtime.
type CityRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Province  string   `json:"province"`
	IsCapital bool     `json:"isCapital"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}
