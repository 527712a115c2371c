package taxonomy

// flavorCategories groups every known tasting note into exactly one category.
// A note appearing under two categories is a data-integrity violation and is
// rejected when the taxonomy is built.
var flavorCategories = map[string][]string{
	"stone fruit": {
		"peach", "apricot", "nectarine", "plum", "cherry", "black cherry",
		"stone fruit", "prune", "persimmon",
	},
	"citrus": {
		"citrus", "orange", "blood orange", "tangerine", "mandarin", "lemon",
		"lime", "grapefruit", "bergamot", "yuzu",
	},
	"berry": {
		"berry", "berries", "red berries", "dark berries", "blueberry",
		"raspberry", "strawberry", "blackberry", "blackcurrant", "redcurrant",
		"cranberry", "gooseberry",
	},
	"tropical": {
		"tropical", "mango", "pineapple", "papaya", "passion fruit", "guava",
		"lychee", "coconut", "banana", "kiwi",
	},
	"dried fruit": {
		"raisin", "date", "fig", "dried fruits", "fruitcake", "tamarind",
	},
	"orchard": {
		"apple", "green apple", "pear", "grape", "melon", "watermelon",
		"pomegranate",
	},
	"floral": {
		"floral", "jasmine", "rose", "lavender", "violet", "hibiscus",
		"honeysuckle", "geranium", "chamomile",
	},
	"sweet": {
		"honey", "caramel", "toffee", "fudge", "maple", "brown sugar",
		"molasses", "panela", "candy",
	},
	"chocolate": {
		"chocolate", "dark chocolate", "milk chocolate", "cocoa", "cacao",
	},
	"nutty": {
		"nutty", "almond", "hazelnut", "walnut", "pistachio", "macadamia",
		"pecan", "marzipan", "praline",
	},
	"spice": {
		"cinnamon", "cardamom", "ginger", "baking spice",
	},
	"tea": {
		"tea", "black tea", "green tea", "oolong", "darjeeling",
	},
	"wine": {
		"wine", "red wine", "brandy", "rum", "jammy",
	},
	"herbal": {
		"herbal", "lemongrass", "verbena", "eucalyptus", "tobacco",
	},
	"baked": {
		"brioche", "biscuit", "grains", "malt",
	},
	"creamy": {
		"cream", "custard", "vanilla", "butter",
	},
	"fresh": {
		"fresh", "crisp", "bright", "juicy", "complex",
	},
	"fermented": {
		"fermented", "wild", "yeasty", "boozy", "winey",
	},
}

// processNames are the known processing methods.
var processNames = []string{
	"washed", "natural", "honey", "anaerobic", "carbonic maceration",
	"double fermentation", "extended fermentation", "thermal shock",
	"wet hulled", "semi-washed", "pulped natural",
}

// jargonEntries maps colloquial barista phrases to a curated expansion.
// Categories expand to all of the category's notes; Notes are added verbatim;
// ExcludeCategories disqualify items carrying any note of that category.
var jargonEntries = map[string]JargonEntry{
	"funky": {
		Categories: []string{"fermented"},
		Processes:  []string{"natural", "anaerobic"},
	},
	"anaerobic funk": {
		Categories: []string{"fermented"},
		Processes:  []string{"anaerobic"},
	},
	"wild ferment": {
		Categories: []string{"fermented"},
		Processes:  []string{"natural", "anaerobic"},
	},
	"berry bomb": {
		Categories: []string{"berry"},
		Notes:      []string{"jammy"},
		Processes:  []string{"natural"},
	},
	"fruit bomb": {
		Categories: []string{"berry", "stone fruit", "tropical"},
		Notes:      []string{"jammy"},
		Processes:  []string{"natural"},
	},
	"fruit forward": {
		Categories: []string{"berry", "stone fruit", "citrus", "tropical"},
	},
	"clean cup": {
		Notes:             []string{"tea", "crisp", "bright", "fresh"},
		Processes:         []string{"washed"},
		ExcludeCategories: []string{"fermented"},
	},
	"clean": {
		Notes:             []string{"tea", "crisp", "bright", "fresh"},
		Processes:         []string{"washed"},
		ExcludeCategories: []string{"fermented"},
	},
	"washed clarity": {
		Notes:     []string{"crisp", "bright", "fresh"},
		Processes: []string{"washed"},
	},
	"natural sweetness": {
		Categories: []string{"sweet"},
		Processes:  []string{"natural"},
	},
	"honey process": {
		Processes: []string{"honey"},
	},
	"carbonic": {
		Processes: []string{"carbonic maceration"},
	},
	"easy drinking": {
		Categories: []string{"chocolate", "sweet", "nutty"},
		Processes:  []string{"washed"},
	},
	"crowd pleaser": {
		Categories: []string{"chocolate", "sweet", "nutty"},
	},
	"classic": {
		Categories: []string{"chocolate", "nutty", "sweet"},
		Processes:  []string{"washed"},
	},
	"experimental": {
		Categories: []string{"fermented"},
		Processes:  []string{"anaerobic", "carbonic maceration", "thermal shock"},
	},
}

// metaCategories are umbrella terms that expand to multiple categories.
var metaCategories = map[string][]string{
	"fruity": {"stone fruit", "citrus", "berry", "tropical", "dried fruit", "orchard"},
	"fruit":  {"stone fruit", "citrus", "berry", "tropical", "dried fruit", "orchard"},
}

// categoryAliases normalize common variants to a canonical category name.
var categoryAliases = map[string]string{
	"chocolatey": "chocolate",
	"chocolaty":  "chocolate",
	"caramelly":  "sweet",
	"syrupy":     "sweet",
	"nuts":       "nutty",
	"tea-like":   "tea",
	"spicy":      "spice",
	"flowery":    "floral",
	"herby":      "herbal",
	"bakery":     "baked",
}

// processCorrelations describe which flavor categories a processing method
// tends to produce. They are heuristic ranking hints, never authoritative
// filters.
var processCorrelations = map[string]ProcessCorrelation{
	"natural": {
		Categories:  []string{"berry", "wine"},
		Descriptors: []string{"jammy", "winey", "boozy"},
	},
	"washed": {
		Categories:  []string{"citrus", "floral", "tea"},
		Descriptors: []string{"crisp", "bright", "fresh"},
	},
	"honey": {
		Categories:  []string{"sweet"},
		Descriptors: []string{"honey", "caramel"},
	},
	"anaerobic": {
		Categories:  []string{"fermented"},
		Descriptors: []string{"wild", "yeasty"},
	},
	"carbonic maceration": {
		Categories:  []string{"fermented", "wine"},
		Descriptors: []string{"winey", "boozy"},
	},
}
