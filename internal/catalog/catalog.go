// Package catalog holds the process-wide static configuration lists
// shared by the ranking filters and the public listing endpoints.
package catalog

// Fallback categories used when a verdict cannot be classified.
const (
	CategoryMedicine = "Medicine"
	CategoryUnknown  = "Unknown"
)

var sources = []string{
	"PubMed",
	"Nature",
	"The Lancet",
	"JAMA",
	"New England Journal of Medicine",
	"Science Direct",
	"Cochrane Library",
	"BMJ",
	"Cell",
	"WHO Guidelines",
}

var platforms = []string{
	"Twitter",
	"Instagram",
	"YouTube",
	"Podcasts",
	"Blog Posts",
	"Scientific Publications",
	"TikTok",
	"LinkedIn",
	"Facebook",
	"Newsletters",
}

var categories = []string{
	"Nutrition",
	"Exercise Science",
	"Mental Health",
	"Sleep Science",
	"Longevity",
	"Supplements",
	"Weight Management",
	"Hormones",
	"Gut Health",
	"Immunology",
	"Neuroscience",
	"Cardiovascular Health",
}

// Sources returns the recognized scientific reference sources.
func Sources() []string {
	return clone(sources)
}

// Platforms returns the recognized publishing platforms.
func Platforms() []string {
	return clone(platforms)
}

// Categories returns the recognized claim categories.
func Categories() []string {
	return clone(categories)
}

// IsCategory reports whether name is one of the recognized categories.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
