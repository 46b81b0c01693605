// Package pipeline narrows and orders a catalog snapshot according to
// FilterCriteria. Apply is pure: it never mutates its input and never fails.
package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"spilcafe-catalog/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale orders titles the way the café's Danish catalog expects (æ, ø, å last).
var DefaultLocale = language.Danish

// StageCount records how many games survived a stage.
type StageCount struct {
	Stage     string `json:"stage"`
	Remaining int    `json:"remaining"`
	Skipped   bool   `json:"skipped"`
}

type Pipeline struct {
	locale language.Tag
}

func New(locale language.Tag) *Pipeline {
	return &Pipeline{locale: locale}
}

// Apply runs the pipeline with DefaultLocale.
func Apply(records []domain.Game, c domain.FilterCriteria) []domain.Game {
	return New(DefaultLocale).Apply(records, c)
}

func (p *Pipeline) Apply(records []domain.Game, c domain.FilterCriteria) []domain.Game {
	out, _ := p.ApplyWithTrace(records, c)
	return out
}

// ApplyWithTrace is Apply plus the survivor count after every stage.
func (p *Pipeline) ApplyWithTrace(records []domain.Game, c domain.FilterCriteria) ([]domain.Game, []StageCount) {
	// collate.Collator and cases.Caser keep internal buffers, so each call gets its own.
	fold := cases.Fold()

	out := make([]domain.Game, len(records))
	copy(out, records)

	trace := make([]StageCount, 0, 7)
	narrow := func(name string, active bool, keep func(domain.Game) bool) {
		if active {
			out = slices.DeleteFunc(out, func(g domain.Game) bool { return !keep(g) })
		}
		trace = append(trace, StageCount{Stage: name, Remaining: len(out), Skipped: !active})
	}

	search := fold.String(strings.TrimSpace(c.SearchText))
	narrow("search", search != "", func(g domain.Game) bool {
		return strings.Contains(fold.String(g.Title), search)
	})

	genres := foldAll(fold, c.Genres)
	narrow("genre", len(genres) > 0, func(g domain.Game) bool {
		return matchesGenre(fold, g.Genre, genres)
	})

	narrow("difficulty", c.Difficulty != "", func(g domain.Game) bool {
		return g.Difficulty == c.Difficulty
	})

	narrow("language", c.Language != "", func(g domain.Game) bool {
		return g.Language == c.Language
	})

	narrow("players", c.PlayerCount > 0, func(g domain.Game) bool {
		return g.Players.Contains(c.PlayerCount)
	})

	from, to := ratingBounds(c)
	narrow("rating", from > domain.RatingMin || to < domain.RatingMax, func(g domain.Game) bool {
		return g.Rating >= from && g.Rating <= to
	})

	switch c.Sort {
	case domain.SortTitle:
		col := collate.New(p.locale)
		slices.SortStableFunc(out, func(a, b domain.Game) int {
			return col.CompareString(a.Title, b.Title)
		})
	case domain.SortRating:
		slices.SortStableFunc(out, func(a, b domain.Game) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	}
	trace = append(trace, StageCount{
		Stage:     "sort",
		Remaining: len(out),
		Skipped:   c.Sort != domain.SortTitle && c.Sort != domain.SortRating,
	})

	return out, trace
}

// ratingBounds clamps the requested range to the rating scale and swaps
// inverted bounds.
func ratingBounds(c domain.FilterCriteria) (float64, float64) {
	from, to := c.RatingFrom, c.UpperRating()
	if from > to {
		from, to = to, from
	}
	return max(from, domain.RatingMin), min(to, domain.RatingMax)
}

func foldAll(fold cases.Caser, labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, fold.String(l))
		}
	}
	return out
}

// matchesGenre is a membership test: any selected label contained in any tag.
func matchesGenre(fold cases.Caser, tags domain.Genres, selected []string) bool {
	for _, tag := range tags {
		t := fold.String(tag)
		for _, s := range selected {
			if strings.Contains(t, s) {
				return true
			}
		}
	}
	return false
}
