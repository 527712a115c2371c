package query

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roastmatch/coffee-search/internal/types"
)

var (
	maxPriceRe = regexp.MustCompile(`(?i)\b(?:under|below|less than|cheaper than|max)\s*\$?(\d+(?:\.\d+)?)`)
	minPriceRe = regexp.MustCompile(`(?i)\b(?:over|above|more than|at least|min)\s*\$?(\d+(?:\.\d+)?)`)
)

// countries maps every recognizable origin spelling (name or demonym,
// lowercase) to the canonical country name used by the catalog.
var countries = map[string]string{
	"ethiopia": "Ethiopia", "ethiopian": "Ethiopia",
	"kenya": "Kenya", "kenyan": "Kenya",
	"colombia": "Colombia", "colombian": "Colombia",
	"brazil": "Brazil", "brazilian": "Brazil",
	"guatemala": "Guatemala", "guatemalan": "Guatemala",
	"costa rica": "Costa Rica", "costa rican": "Costa Rica",
	"honduras": "Honduras", "honduran": "Honduras",
	"el salvador": "El Salvador", "salvadoran": "El Salvador",
	"panama": "Panama", "panamanian": "Panama",
	"peru": "Peru", "peruvian": "Peru",
	"bolivia": "Bolivia", "bolivian": "Bolivia",
	"ecuador": "Ecuador", "ecuadorian": "Ecuador",
	"mexico": "Mexico", "mexican": "Mexico",
	"nicaragua": "Nicaragua", "nicaraguan": "Nicaragua",
	"rwanda": "Rwanda", "rwandan": "Rwanda",
	"burundi": "Burundi", "burundian": "Burundi",
	"tanzania": "Tanzania", "tanzanian": "Tanzania",
	"uganda": "Uganda", "ugandan": "Uganda",
	"congo": "DR Congo", "congolese": "DR Congo",
	"yemen": "Yemen", "yemeni": "Yemen",
	"indonesia": "Indonesia", "indonesian": "Indonesia",
	"india": "India", "indian": "India",
	"vietnam": "Vietnam", "vietnamese": "Vietnam",
	"china": "China", "chinese": "China",
	"myanmar":          "Myanmar",
	"papua new guinea": "Papua New Guinea",
}

// ExtractFilters pulls price bounds and an origin country out of raw query
// text. It runs on every resolution path so "under $20 Ethiopian floral"
// resolves in one tier. Deterministic: longest country spelling wins.
func ExtractFilters(raw string) types.QueryFilters {
	var f types.QueryFilters
	if m := maxPriceRe.FindStringSubmatch(raw); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			f.MaxPrice = &d
		}
	}
	if m := minPriceRe.FindStringSubmatch(raw); m != nil {
		if d, err := decimal.NewFromString(m[1]); err == nil {
			f.MinPrice = &d
		}
	}
	f.Country = matchCountry(raw)
	return f
}

func matchCountry(raw string) string {
	lower := strings.ToLower(raw)
	best := ""
	bestLen := 0
	for spelling, canonical := range countries {
		if len(spelling) > bestLen && containsWord(lower, spelling) {
			best = canonical
			bestLen = len(spelling)
		}
	}
	return best
}

// containsWord reports whether needle occurs in haystack on word boundaries,
// so "india" does not fire inside "indonesian".
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isLetter(haystack[start-1])
		afterOK := end == len(haystack) || !isLetter(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
