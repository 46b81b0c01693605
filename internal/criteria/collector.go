// Package criteria reads submitted filter controls into domain.FilterCriteria.
package criteria

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"spilcafe-catalog/internal/domain"
)

// Control names shared by the collector and the filter panel template.
const (
	FieldSearch     = "q"
	FieldGenre      = "genre"
	FieldDifficulty = "difficulty"
	FieldLanguage   = "language"
	FieldPlayers    = "players"
	FieldRatingFrom = "rating_from"
	FieldRatingTo   = "rating_to"
	FieldSort       = "sort"
)

// Fields lists every control the collector reads.
var Fields = []string{
	FieldSearch,
	FieldGenre,
	FieldDifficulty,
	FieldLanguage,
	FieldPlayers,
	FieldRatingFrom,
	FieldRatingTo,
	FieldSort,
}

// anyValue is what the "all" option of a select submits.
const anyValue = "all"

// Collect snapshots the controls in values. Anything absent or malformed
// falls back to no restriction for that control.
func Collect(values url.Values) domain.FilterCriteria {
	c := domain.DefaultCriteria()

	c.SearchText = strings.TrimSpace(values.Get(FieldSearch))
	c.Genres = collectGenres(values[FieldGenre])
	c.Difficulty = single(values.Get(FieldDifficulty))
	c.Language = single(values.Get(FieldLanguage))

	if n, err := strconv.Atoi(strings.TrimSpace(values.Get(FieldPlayers))); err == nil && n > 0 {
		c.PlayerCount = n
	}
	if f, ok := rating(values.Get(FieldRatingFrom)); ok {
		c.RatingFrom = f
	}
	if f, ok := rating(values.Get(FieldRatingTo)); ok {
		c.RatingTo = domain.Bound(f)
	}

	c.Sort = domain.ParseSortKey(strings.TrimSpace(values.Get(FieldSort)))
	return c
}

// Encode is the inverse of Collect; controls at their default are left out.
func Encode(c domain.FilterCriteria) url.Values {
	v := url.Values{}
	if c.SearchText != "" {
		v.Set(FieldSearch, c.SearchText)
	}
	for _, g := range c.Genres {
		v.Add(FieldGenre, g)
	}
	if c.Difficulty != "" {
		v.Set(FieldDifficulty, c.Difficulty)
	}
	if c.Language != "" {
		v.Set(FieldLanguage, c.Language)
	}
	if c.PlayerCount > 0 {
		v.Set(FieldPlayers, strconv.Itoa(c.PlayerCount))
	}
	if c.RatingFrom != domain.RatingMin {
		v.Set(FieldRatingFrom, strconv.FormatFloat(c.RatingFrom, 'f', -1, 64))
	}
	if c.RatingTo != nil {
		v.Set(FieldRatingTo, strconv.FormatFloat(*c.RatingTo, 'f', -1, 64))
	}
	if c.Sort == domain.SortTitle || c.Sort == domain.SortRating {
		v.Set(FieldSort, string(c.Sort))
	}
	return v
}

func collectGenres(raw []string) []string {
	var out []string
	seen := make(map[string]bool, len(raw))
	for _, g := range raw {
		g = single(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

func single(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, anyValue) {
		return ""
	}
	return s
}

func rating(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
