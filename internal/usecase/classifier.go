package usecase

import (
	"strings"

	"github.com/vicino/backend/internal/domain"
)

// Provider tags that disqualify a record outright, whatever else it claims
// to be. Provider tagging is noisy (a hotel restaurant carries both
// "restaurant" and "lodging"), so exclusion wins before any positive signal
// is considered.
var excludedTags = map[string]bool{
	// lodging
	"lodging": true, "hotel": true, "campground": true, "rv_park": true,
	// fuel & vehicles
	"gas_station": true, "car_repair": true, "car_dealer": true, "car_wash": true,
	"car_rental": true, "parking": true,
	// medical
	"hospital": true, "pharmacy": true, "doctor": true, "dentist": true,
	"physiotherapist": true, "veterinary_care": true,
	// finance
	"bank": true, "atm": true, "finance": true, "accounting": true,
	"insurance_agency": true, "real_estate_agency": true,
	// retail
	"supermarket": true, "grocery_or_supermarket": true, "convenience_store": true,
	"department_store": true, "shopping_mall": true, "clothing_store": true,
	"furniture_store": true, "hardware_store": true, "electronics_store": true,
	// government & civic
	"local_government_office": true, "city_hall": true, "courthouse": true,
	"police": true, "post_office": true, "embassy": true,
	// transit infrastructure
	"train_station": true, "bus_station": true, "subway_station": true,
	"transit_station": true, "light_rail_station": true, "airport": true, "taxi_stand": true,
}

// Name fragments that disqualify a record: hotel chains, pharmacies,
// supermarket chains, fuel brands. Matched word-wise against the venue name.
var excludedNameKeywords = []string{
	"hotel", "albergo", "ostello", "residence", "b&b",
	"farmacia", "pharmacy", "parafarmacia", "ospedale", "clinica",
	"supermercato", "ipermercato", "conad", "coop", "esselunga",
	"carrefour", "lidl", "eurospin", "penny market", "pam",
	"benzinaio", "distributore", "esso", "eni", "q8", "tamoil", "ip",
	"banca", "bancomat", "posta", "tabaccheria",
}

// Positive restaurant signals.
var restaurantTags = map[string]bool{
	"restaurant": true, "meal_delivery": true, "meal_takeaway": true,
}

var restaurantNameKeywords = []string{
	"ristorante", "pizzeria", "trattoria", "osteria", "braceria",
	"rosticceria", "friggitoria", "piadineria", "paninoteca",
	"sushi", "kebab", "steakhouse", "hamburgeria", "restaurant",
}

// Positive cafe signals.
var cafeTags = map[string]bool{
	"cafe": true, "bar": true, "bakery": true,
}

var cafeNameKeywords = []string{
	"bar", "caffè", "caffe", "caffetteria", "pasticceria", "gelateria",
	"panetteria", "panificio", "cioccolateria", "torrefazione", "cremeria",
	"bistrot", "cafe",
}

// Secondary food-establishment keywords. These names don't carry a clear
// provider tag but still identify a food or drink venue: lodging-style
// names serve full meals, drink-style names behave like bars.
var secondaryRestaurantKeywords = []string{
	"agriturismo", "locanda", "taverna", "masseria", "rifugio",
}

var secondaryCafeKeywords = []string{
	"enoteca", "vineria", "birreria", "pub", "wine bar",
}

// Classifier turns raw provider records into domain venues, assigning a
// category and an inclusion decision. It never errors: a record that cannot
// be confirmed as a food/drink venue is simply dropped.
type Classifier struct{}

// NewClassifier creates a venue classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify decides whether a raw record is a venue we track and, if so,
// which category it belongs to. Decision order: hard exclusion first, then
// restaurant signals, then cafe signals, then secondary keywords; anything
// left over is excluded.
func (c *Classifier) Classify(rec *domain.PlaceRecord) (domain.Category, bool) {
	if rec == nil || rec.Name == "" {
		return "", false
	}

	name := strings.ToLower(rec.Name)

	for _, tag := range rec.Types {
		if excludedTags[tag] {
			return "", false
		}
	}
	if nameHasAnyKeyword(name, excludedNameKeywords) {
		return "", false
	}

	if hasAnyTag(rec.Types, restaurantTags) || nameHasAnyKeyword(name, restaurantNameKeywords) {
		return domain.CategoryRestaurant, true
	}

	if hasAnyTag(rec.Types, cafeTags) || nameHasAnyKeyword(name, cafeNameKeywords) {
		return domain.CategoryCafe, true
	}

	if nameHasAnyKeyword(name, secondaryRestaurantKeywords) {
		return domain.CategoryRestaurant, true
	}
	if nameHasAnyKeyword(name, secondaryCafeKeywords) {
		return domain.CategoryCafe, true
	}

	return "", false
}

func hasAnyTag(tags []string, set map[string]bool) bool {
	for _, tag := range tags {
		if set[tag] {
			return true
		}
	}
	return false
}

// nameHasAnyKeyword checks keywords against a lowercased name. Multi-word
// keywords match as substrings; single words match whole tokens only, so
// "bar" doesn't light up inside "barberia".
func nameHasAnyKeyword(name string, keywords []string) bool {
	var tokens []string
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(name, kw) {
				return true
			}
			continue
		}
		if tokens == nil {
			tokens = strings.Fields(name)
		}
		for _, tok := range tokens {
			if strings.Trim(tok, ".,'()-\"") == kw {
				return true
			}
		}
	}
	return false
}
