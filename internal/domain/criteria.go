package domain

// Bounds of the rating scale used by the rating range controls.
const (
	RatingMin = 0.0
	RatingMax = 10.0
)

type SortKey string

const (
	SortNone   SortKey = "none"
	SortTitle  SortKey = "title"
	SortRating SortKey = "rating"
)

// ParseSortKey maps a control value to a SortKey, falling back to SortNone.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortTitle:
		return SortTitle
	case SortRating:
		return SortRating
	default:
		return SortNone
	}
}

// FilterCriteria is a snapshot of the search, filter and sort controls.
// Zero values mean "no restriction". RatingTo is nil when no upper bound was
// given, so an explicit 0 stays a real bound.
type FilterCriteria struct {
	SearchText  string   `json:"search_text,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Language    string   `json:"language,omitempty"`
	PlayerCount int      `json:"player_count,omitempty"`
	RatingFrom  float64  `json:"rating_from"`
	RatingTo    *float64 `json:"rating_to,omitempty"`
	Sort        SortKey  `json:"sort"`
}

func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		RatingFrom: RatingMin,
		Sort:       SortNone,
	}
}

// IsDefault reports whether the criteria restrict nothing and keep load order.
func (c FilterCriteria) IsDefault() bool {
	return c.SearchText == "" &&
		len(c.Genres) == 0 &&
		c.Difficulty == "" &&
		c.Language == "" &&
		c.PlayerCount <= 0 &&
		c.RatingFrom == RatingMin &&
		c.UpperRating() == RatingMax &&
		(c.Sort == SortNone || c.Sort == "")
}

// UpperRating is the requested upper rating bound, RatingMax when unset.
func (c FilterCriteria) UpperRating() float64 {
	if c.RatingTo == nil {
		return RatingMax
	}
	return *c.RatingTo
}

// Bound returns a pointer to v for use as an explicit rating bound.
func Bound(v float64) *float64 {
	return &v
}
