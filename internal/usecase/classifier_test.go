package usecase

import (
	"testing"

	"github.com/vicino/backend/internal/domain"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name         string
		venueName    string
		tags         []string
		wantCategory domain.Category
		wantIncluded bool
	}{
		{
			name:         "restaurant tag",
			venueName:    "Da Mario",
			tags:         []string{"restaurant", "food"},
			wantCategory: domain.CategoryRestaurant,
			wantIncluded: true,
		},
		{
			name:         "restaurant keyword in name",
			venueName:    "Pizzeria Napoli",
			tags:         []string{"restaurant"},
			wantCategory: domain.CategoryRestaurant,
			wantIncluded: true,
		},
		{
			name:         "cafe tag",
			venueName:    "Sweet Corner",
			tags:         []string{"cafe"},
			wantCategory: domain.CategoryCafe,
			wantIncluded: true,
		},
		{
			name:         "bakery tag maps to cafe",
			venueName:    "Forno Antico",
			tags:         []string{"bakery", "food"},
			wantCategory: domain.CategoryCafe,
			wantIncluded: true,
		},
		{
			name:         "cafe keyword in name",
			venueName:    "Pasticceria Gerla",
			tags:         []string{"food"},
			wantCategory: domain.CategoryCafe,
			wantIncluded: true,
		},
		{
			name:         "lodging tag excludes despite restaurant tag",
			venueName:    "Hotel Bellavista Ristorante",
			tags:         []string{"restaurant", "lodging"},
			wantIncluded: false,
		},
		{
			name:         "hotel keyword excludes despite cafe tag",
			venueName:    "Grand Hotel Caffè",
			tags:         []string{"cafe"},
			wantIncluded: false,
		},
		{
			name:         "pharmacy excluded",
			venueName:    "Farmacia Centrale",
			tags:         []string{"pharmacy", "health"},
			wantIncluded: false,
		},
		{
			name:         "supermarket chain excluded by name",
			venueName:    "Esselunga Superstore",
			tags:         []string{"food"},
			wantIncluded: false,
		},
		{
			name:         "gas station excluded",
			venueName:    "Area di Servizio Nord",
			tags:         []string{"gas_station"},
			wantIncluded: false,
		},
		{
			name:         "agriturismo assigned restaurant by sub-rule",
			venueName:    "Agriturismo Le Vigne",
			tags:         []string{"point_of_interest"},
			wantCategory: domain.CategoryRestaurant,
			wantIncluded: true,
		},
		{
			name:         "enoteca assigned cafe by sub-rule",
			venueName:    "Enoteca Rossi",
			tags:         []string{"point_of_interest"},
			wantCategory: domain.CategoryCafe,
			wantIncluded: true,
		},
		{
			name:         "pub assigned cafe by sub-rule",
			venueName:    "The Crown Pub",
			tags:         []string{"point_of_interest"},
			wantCategory: domain.CategoryCafe,
			wantIncluded: true,
		},
		{
			name:         "no signal excluded",
			venueName:    "Centro Estetico Luna",
			tags:         []string{"point_of_interest", "establishment"},
			wantIncluded: false,
		},
		{
			name:         "bar matches as whole word only",
			venueName:    "Barberia Figaro",
			tags:         []string{"point_of_interest"},
			wantIncluded: false,
		},
		{
			name:         "bar whole word matches",
			venueName:    "Bar Sport",
			tags:         []string{"point_of_interest"},
			wantCategory: domain.CategoryCafe,
			wantIncluded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &domain.PlaceRecord{Name: tt.venueName, Types: tt.tags}
			category, included := c.Classify(rec)

			if included != tt.wantIncluded {
				t.Fatalf("Classify() included = %v, want %v", included, tt.wantIncluded)
			}
			if included && category != tt.wantCategory {
				t.Errorf("Classify() category = %v, want %v", category, tt.wantCategory)
			}
		})
	}
}

func TestClassify_NilAndEmptyRecords(t *testing.T) {
	c := NewClassifier()

	if _, included := c.Classify(nil); included {
		t.Error("Classify(nil) should exclude")
	}
	if _, included := c.Classify(&domain.PlaceRecord{Types: []string{"restaurant"}}); included {
		t.Error("Classify() should exclude a record with no name")
	}
}
