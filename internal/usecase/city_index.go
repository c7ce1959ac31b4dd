package usecase

import (
	"sort"
	"strings"

	"github.com/vicino/backend/internal/domain"
)

// CityIndex is a static in-memory index over the city gazetteer, built once
// at startup and read-only afterwards, so it needs no locking. Each record
// is indexed under several lowercase fragments: the bare name, name plus
// province, and any known aliases.
type CityIndex struct {
	entries []indexEntry
	byID    map[string]*domain.CityRecord
}

type indexEntry struct {
	fragment string
	record   *domain.CityRecord
}

// NewCityIndex builds the index from gazetteer records.
func NewCityIndex(records []domain.CityRecord) *CityIndex {
	idx := &CityIndex{
		byID: make(map[string]*domain.CityRecord, len(records)),
	}

	for i := range records {
		rec := &records[i]
		idx.byID[rec.ID] = rec

		fragments := []string{
			strings.ToLower(rec.Name),
			strings.ToLower(rec.Name + " " + rec.Province),
		}
		for _, alias := range rec.Aliases {
			fragments = append(fragments, strings.ToLower(alias))
		}

		for _, f := range fragments {
			idx.entries = append(idx.entries, indexEntry{fragment: f, record: rec})
		}
	}

	// Stable fragment order keeps lookups deterministic.
	sort.Slice(idx.entries, func(i, j int) bool {
		return idx.entries[i].fragment < idx.entries[j].fragment
	})

	return idx
}

// ByID returns a city record by its gazetteer id.
func (idx *CityIndex) ByID(id string) (*domain.CityRecord, bool) {
	rec, ok := idx.byID[id]
	return rec, ok
}

// Lookup returns cities matching the query: prefix matches first (capitals
// ranked above non-capitals, then alphabetical), then substring matches.
// Results are deduplicated by (name, province) and capped at limit.
func (idx *CityIndex) Lookup(query string, limit int) []domain.CityRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	var prefix, substring []*domain.CityRecord
	seenPrefix := make(map[*domain.CityRecord]bool)
	seenSubstring := make(map[*domain.CityRecord]bool)

	for _, e := range idx.entries {
		switch {
		case strings.HasPrefix(e.fragment, query):
			if !seenPrefix[e.record] {
				seenPrefix[e.record] = true
				prefix = append(prefix, e.record)
			}
		case strings.Contains(e.fragment, query):
			if !seenSubstring[e.record] {
				seenSubstring[e.record] = true
				substring = append(substring, e.record)
			}
		}
	}

	rank := func(records []*domain.CityRecord) {
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].IsCapital != records[j].IsCapital {
				return records[i].IsCapital
			}
			return records[i].Name < records[j].Name
		})
	}
	rank(prefix)
	rank(substring)

	var results []domain.CityRecord
	seen := make(map[string]bool)
	appendUnique := func(records []*domain.CityRecord) {
		for _, rec := range records {
			if len(results) >= limit {
				return
			}
			dedupKey := strings.ToLower(rec.Name) + "|" + strings.ToLower(rec.Province)
			if seen[dedupKey] {
				continue
			}
			seen[dedupKey] = true
			results = append(results, *rec)
		}
	}
	appendUnique(prefix)
	appendUnique(substring)

	return results
}
