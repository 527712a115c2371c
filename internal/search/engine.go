package search

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roastmatch/coffee-search/internal/taxonomy"
	"github.com/roastmatch/coffee-search/internal/types"
)

// rank filters, matches and scores the catalog against a parsed query. It is
// pure: same parsed query and same catalog slice always produce the same
// ordering.
func rank(tax *taxonomy.Taxonomy, coffees []types.Coffee, parsed types.ParsedQuery, limit int) []types.SearchResult {
	semantic := parsed.HasSemanticTerms()

	var results []types.SearchResult
	for _, coffee := range coffees {
		if !passesFilters(coffee, parsed.Filters) {
			continue
		}
		if excludedByCategory(tax, coffee, parsed.ExcludeCategories) {
			continue
		}

		matched, score := matchAttributes(coffee, parsed)
		if semantic && len(matched) == 0 {
			continue
		}

		results = append(results, types.SearchResult{
			Coffee:            coffee,
			MatchedAttributes: matched,
			Score:             score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return strings.ToLower(results[i].Coffee.Name) < strings.ToLower(results[j].Coffee.Name)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// passesFilters applies the structured filters. Price bounds are satisfied if
// ANY variant falls inside them: a bag line with a 250g under budget still
// matches even when the 1kg option does not.
func passesFilters(coffee types.Coffee, filters types.QueryFilters) bool {
	if filters.RoasterID != "" && coffee.RoasterID != filters.RoasterID {
		return false
	}

	if filters.Country != "" {
		want := strings.ToLower(filters.Country)
		found := false
		for _, c := range coffee.Country {
			if strings.Contains(strings.ToLower(c), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.MaxPrice != nil || filters.MinPrice != nil {
		if !anyVariantInRange(coffee.Variants, filters.MinPrice, filters.MaxPrice) {
			return false
		}
	}

	return true
}

func anyVariantInRange(variants []types.PriceVariant, min, max *decimal.Decimal) bool {
	for _, v := range variants {
		if min != nil && v.PriceUSD.LessThan(*min) {
			continue
		}
		if max != nil && v.PriceUSD.GreaterThan(*max) {
			continue
		}
		return true
	}
	return false
}

// excludedByCategory drops items carrying any note belonging to an excluded
// flavor category. Categories are resolved through the reverse note index, so
// "clean cup" knocks out a coffee tasting of "boozy" without the query ever
// naming that note.
func excludedByCategory(tax *taxonomy.Taxonomy, coffee types.Coffee, excluded []string) bool {
	if len(excluded) == 0 {
		return false
	}
	for _, note := range coffee.Notes {
		cat, ok := tax.CategoryForNote(strings.ToLower(note))
		if !ok {
			continue
		}
		for _, ex := range excluded {
			if strings.EqualFold(cat, ex) {
				return true
			}
		}
	}
	return false
}

// matchAttributes intersects the query's mapped terms with the item's notes
// and processes. The score is the fraction of requested terms the item
// satisfies, so an item hitting 3 of 4 requested notes outranks one hitting 1.
func matchAttributes(coffee types.Coffee, parsed types.ParsedQuery) ([]string, float64) {
	var matched []string
	hits := 0

	for _, want := range parsed.MappedNotes {
		if attr, ok := matchTerm(want, coffee.Notes); ok {
			matched = append(matched, attr)
			hits++
		}
	}

	processAttrs := append(append([]string{}, coffee.Process...), coffee.Protocol...)
	for _, want := range parsed.MappedProcesses {
		if attr, ok := matchTerm(want, processAttrs); ok {
			matched = append(matched, attr)
			hits++
		}
	}

	total := len(parsed.MappedNotes) + len(parsed.MappedProcesses)
	if total == 0 {
		return matched, 0
	}
	return matched, float64(hits) / float64(total)
}

// matchTerm reports whether a query term matches any item attribute, either
// exactly or by whole-phrase containment in either direction ("chocolate"
// matches "dark chocolate"; "milk chocolate" matches an item note of
// "chocolate"). Returns the item's attribute spelling on a hit.
func matchTerm(want string, attrs []string) (string, bool) {
	w := strings.ToLower(want)
	for _, attr := range attrs {
		a := strings.ToLower(attr)
		if a == w || strings.Contains(a, w) || strings.Contains(w, a) {
			return attr, true
		}
	}
	return "", false
}
