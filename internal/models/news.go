package models

// Category classifies a generated news item.
type Category string

const (
	CategoryRace      Category = "race"
	CategoryTransfers Category = "transfers"
	CategoryTeams     Category = "teams"
	CategoryDrivers   Category = "drivers"
	CategoryTechnical Category = "technical"
)

// ValidCategory reports whether c is one of the known news categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryRace, CategoryTransfers, CategoryTeams, CategoryDrivers, CategoryTechnical:
		return true
	}
	return false
}

// NewsItem is a single AI-generated news entry. Items are ephemeral: they
// live in the feed cache and are never persisted.
type NewsItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Category Category `json:"category"`
	Date     string   `json:"date"` // YYYY-MM-DD as produced by the model
}
