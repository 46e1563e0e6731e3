package domain

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Category splits the deck into major and minor arcana.
type Category string

const (
	CategoryMajor Category = "major"
	CategoryMinor Category = "minor"
)

// Suit is a minor-arcana suit. Majors carry SuitNone.
type Suit string

const (
	SuitNone      Suit = ""
	SuitWands     Suit = "wands"
	SuitCups      Suit = "cups"
	SuitSwords    Suit = "swords"
	SuitPentacles Suit = "pentacles"
)

// Card describes one tarot card. Immutable once the catalog is built; placed
// instances wrap a Card rather than copy its fields piecemeal.
type Card struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"name"`
	Rank        int      `json:"rank"`
	Category    Category `json:"category"`
	Suit        Suit     `json:"suit,omitempty"`
	AssetKey    string   `json:"assetKey"`
}

// Filter restricts which categories are in play. Cards failing the filter sit
// in the reserve instead of the draw pile.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterMajor Filter = "major"
	FilterMinor Filter = "minor"
)

// Allows reports whether the card may enter the draw pile under this filter.
func (f Filter) Allows(c Card) bool {
	switch f {
	case FilterMajor:
		return c.Category == CategoryMajor
	case FilterMinor:
		return c.Category == CategoryMinor
	default:
		return true
	}
}

// ParseFilter validates a filter received over the wire. Empty means "all".
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case FilterAll, FilterMajor, FilterMinor:
		return Filter(raw), nil
	case "":
		return FilterAll, nil
	default:
		return "", ErrUnknownFilter
	}
}

// Face selects which side of a card an asset shows.
type Face string

const (
	FaceFront Face = "front"
	FaceBack  Face = "back"
)

// Style keys an art style in the asset resolver. Styles are data, not code:
// adding one touches only the resolver registry.
type Style string
