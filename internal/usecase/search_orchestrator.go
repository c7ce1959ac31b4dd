package usecase

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/vicino/backend/internal/domain"
)

// Relevance scores, strongest signal first.
const (
	scoreExactName        = 100.0
	scoreNamePrefix       = 80.0
	scoreWholeWord        = 60.0
	scoreNameSubstring    = 40.0
	scoreAddressSubstring = 20.0
)

// Rating and review-count bonuses are small nudges; they break ties between
// equally relevant names, they never outrank a better text match.
const (
	highRatingBonus  = 10.0
	goodRatingBonus  = 5.0
	manyReviewsBonus = 10.0
	someReviewsBonus = 5.0

	highRatingFloor  = 4.5
	goodRatingFloor  = 4.0
	manyReviewsFloor = 500
	someReviewsFloor = 100
)

// queryExpansions maps query words to extra search variants worth trying.
// A query containing "pizza" is also worth issuing as "pizzeria".
var queryExpansions = map[string][]string{
	"pizza":     {"pizzeria", "pizza al taglio"},
	"caffè":     {"caffetteria", "bar"},
	"caffe":     {"caffetteria", "bar"},
	"coffee":    {"caffetteria", "bar"},
	"gelato":    {"gelateria"},
	"pane":      {"panetteria", "panificio"},
	"dolci":     {"pasticceria"},
	"vino":      {"enoteca", "wine bar"},
	"wine":      {"enoteca", "wine bar"},
	"birra":     {"birreria", "pub"},
	"colazione": {"bar", "pasticceria"},
	"sushi":     {"ristorante giapponese"},
}

// SearchOrchestrator expands a free-text query into multiple search
// strategies against a resolved city, then deduplicates, scores and ranks
// the combined results.
type SearchOrchestrator struct {
	discovery   *DiscoveryService
	maxVariants int
}

// NewSearchOrchestrator creates an orchestrator over the discovery service.
// maxVariants bounds how many query variants are issued, which caps
// provider calls per request.
func NewSearchOrchestrator(discovery *DiscoveryService, maxVariants int) *SearchOrchestrator {
	if maxVariants <= 0 {
		maxVariants = 3
	}
	return &SearchOrchestrator{
		discovery:   discovery,
		maxVariants: maxVariants,
	}
}

// SearchInCity runs the query against a city, combining the raw query and
// its expansions. Variant failures are tolerated as long as at least one
// variant succeeds.
func (o *SearchOrchestrator) SearchInCity(ctx context.Context, query string, city *domain.CityRecord, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || city == nil {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = o.discovery.maxResults
	}

	variants := ExpandQuery(query, o.maxVariants)

	var (
		combined []domain.SearchResult
		seen     = make(map[string]bool)
		lastErr  error
		anyOK    bool
	)

	for _, variant := range variants {
		results, err := o.discovery.SearchByText(ctx, variant, &city.Latitude, &city.Longitude, limit)
		if err != nil {
			log.Printf("[ORCHESTRATOR] Variant %q failed: %v", variant, err)
			lastErr = err
			continue
		}
		anyOK = true

		for _, r := range results {
			if seen[r.Venue.ProviderID] {
				continue
			}
			seen[r.Venue.ProviderID] = true
			combined = append(combined, r)
		}
	}

	if !anyOK {
		return nil, lastErr
	}

	for i := range combined {
		combined[i].Score = scoreCandidate(query, combined[i].Venue)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		a, b := combined[i], combined[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ra, rb := ratingOf(a.Venue), ratingOf(b.Venue)
		if ra != rb {
			return ra > rb
		}
		return a.DistanceMeters < b.DistanceMeters
	})

	if len(combined) > limit {
		combined = combined[:limit]
	}

	return combined, nil
}

// ExpandQuery generates the bounded list of search variants for a query:
// the raw query first, then the query with a category word appended when it
// doesn't already carry one, then known keyword expansions.
func ExpandQuery(query string, maxVariants int) []string {
	variants := []string{query}
	seen := map[string]bool{strings.ToLower(query): true}

	add := func(variant string) bool {
		if len(variants) >= maxVariants {
			return false
		}
		if !seen[variant] {
			seen[variant] = true
			variants = append(variants, variant)
		}
		return true
	}

	lower := strings.ToLower(query)
	if !containsCategoryWord(lower) {
		if !add(lower + " ristorante") {
			return variants
		}
	}

	for _, word := range strings.Fields(lower) {
		for _, expansion := range queryExpansions[word] {
			if !add(expansion) {
				return variants
			}
		}
	}

	return variants
}

// containsCategoryWord reports whether the query already names a venue
// type, in which case appending another one would only add noise.
func containsCategoryWord(query string) bool {
	return nameHasAnyKeyword(query, restaurantNameKeywords) ||
		nameHasAnyKeyword(query, cafeNameKeywords) ||
		nameHasAnyKeyword(query, secondaryRestaurantKeywords) ||
		nameHasAnyKeyword(query, secondaryCafeKeywords)
}

// scoreCandidate computes the text-relevance score of a venue for a query:
// exact name match beats prefix, prefix beats whole-word, whole-word beats
// substring, substring beats an address hit, with small quality bonuses.
func scoreCandidate(query string, venue *domain.Venue) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(venue.Name)
	address := strings.ToLower(venue.Address)

	var score float64
	switch {
	case name == q:
		score = scoreExactName
	case strings.HasPrefix(name, q):
		score = scoreNamePrefix
	case containsWholeWord(name, q):
		score = scoreWholeWord
	case strings.Contains(name, q):
		score = scoreNameSubstring
	case strings.Contains(address, q):
		score = scoreAddressSubstring
	}

	rating := ratingOf(venue)
	if rating >= highRatingFloor {
		score += highRatingBonus
	} else if rating >= goodRatingFloor {
		score += goodRatingBonus
	}

	count := countOf(venue)
	if count >= manyReviewsFloor {
		score += manyReviewsBonus
	} else if count >= someReviewsFloor {
		score += someReviewsBonus
	}

	return score
}

func containsWholeWord(text, word string) bool {
	for _, tok := range strings.Fields(text) {
		if strings.Trim(tok, ".,'()-\"") == word {
			return true
		}
	}
	return false
}
