// Package gazetteer loads the static city reference list the city index is
// built from. The embedded dataset ships with the binary; deployments can
// point at a larger file instead.
package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vicino/backend/internal/domain"
)

//go:embed cities.json
var embeddedCities []byte

// Load parses the embedded gazetteer.
func Load() ([]domain.CityRecord, error) {
	return parse(embeddedCities)
}

// LoadFile parses a gazetteer from an external JSON file.
func LoadFile(path string) ([]domain.CityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: read %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) ([]domain.CityRecord, error) {
	var records []domain.CityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("gazetteer: parse: %w", err)
	}

	for _, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("gazetteer: record %q has no name", r.ID)
		}
		if !domain.ValidCoordinates(r.Latitude, r.Longitude) {
			return nil, fmt.Errorf("gazetteer: record %q has out-of-range coordinates", r.ID)
		}
	}

	return records, nil
}
