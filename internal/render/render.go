// Package render draws the catalog page. Every call rebuilds the full page
// from its input; nothing is diffed against a previous render.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"spilcafe-catalog/internal/constants"
	"spilcafe-catalog/internal/criteria"
	"spilcafe-catalog/internal/domain"
	"spilcafe-catalog/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	ErrMissingTemplate = errors.New("missing template")
	ErrMissingControl  = errors.New("filter panel is missing a control")
)

// requiredTemplates are looked up by name at render time.
var requiredTemplates = []string{"page", "card", "detail", "filter-panel", "menu-panel", "hidden-criteria"}

const (
	PanelFilter = "filter"
	PanelMenu   = "menu"
)

type Links struct {
	Close       template.URL
	FilterPanel template.URL
	MenuPanel   template.URL
	Reset       template.URL
}

type PageView struct {
	Games    []domain.Game
	Total    int
	Criteria domain.FilterCriteria
	Query    string
	Return   string
	Facets   service.Facets
	Status   service.Status
	Panel    string
	Detail   *domain.Game
	NotFound bool
	Links    Links
}

// CardView is what a single card or the detail dialog needs.
type CardView struct {
	Game       domain.Game
	Criteria   domain.FilterCriteria
	DetailURL  template.URL
	DetailPath string
	PinURL     string
	Return     string
	CloseURL   template.URL
}

func NewPageView(res service.BrowseResult, facets service.Facets, status service.Status, panel string) PageView {
	query := criteria.Encode(res.Query).Encode()
	if panel != PanelFilter && panel != PanelMenu {
		panel = ""
	}

	return PageView{
		Games:    res.Games,
		Total:    res.Total,
		Criteria: res.Query,
		Query:    query,
		Return:   string(pageURL("", query, panel)),
		Facets:   facets,
		Status:   status,
		Panel:    panel,
		Links: Links{
			Close:       pageURL("/", query, ""),
			FilterPanel: pageURL("/", query, PanelFilter),
			MenuPanel:   pageURL("/", query, PanelMenu),
			Reset:       "/",
		},
	}
}

func pageURL(path, query, panel string) template.URL {
	q := query
	if panel != "" {
		if q != "" {
			q += "&"
		}
		q += "panel=" + url.QueryEscape(panel)
	}
	if q == "" {
		return template.URL(path)
	}
	if path == "" {
		return template.URL(q)
	}
	return template.URL(path + "?" + q)
}

func gamePath(id domain.GameID) string {
	return "/games/" + url.PathEscape(id.String())
}

type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates and checks that the page can be wired:
// every named template exists and the filter panel exposes every control the
// criteria collector reads.
func New() (*Renderer, error) {
	return newRenderer(templateFS, "templates/*.html")
}

func newRenderer(fsys fs.FS, pattern string) (*Renderer, error) {
	tmpl, err := template.New("catalog").Funcs(funcs()).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := &Renderer{tmpl: tmpl}
	for _, name := range requiredTemplates {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
	}
	if err := r.checkControls(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) checkControls() error {
	probe := NewPageView(service.BrowseResult{Query: domain.DefaultCriteria()}, service.Facets{
		Genres:       []string{"probe"},
		Difficulties: []string{"probe"},
		Languages:    []string{"probe"},
		MaxPlayers:   1,
	}, service.Status{}, PanelFilter)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "filter-panel", probe); err != nil {
		return fmt.Errorf("render filter panel: %w", err)
	}
	html := buf.String()
	for _, field := range criteria.Fields {
		if !strings.Contains(html, `name="`+field+`"`) {
			return fmt.Errorf("%w: %s", ErrMissingControl, field)
		}
	}
	return nil
}

// Render writes the full page with one card per game in the given order.
func (r *Renderer) Render(w io.Writer, view PageView) error {
	if err := r.tmpl.ExecuteTemplate(w, "page", view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderDetail writes the page with the detail dialog open for game.
func (r *Renderer) RenderDetail(w io.Writer, view PageView, game domain.Game) error {
	view.Detail = &game
	return r.Render(w, view)
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"cardView": func(view PageView, g domain.Game) CardView {
			return CardView{
				Game:       g,
				Criteria:   view.Criteria,
				DetailURL:  pageURL(gamePath(g.ID), view.Query, ""),
				DetailPath: gamePath(g.ID),
				PinURL:     gamePath(g.ID) + "/pin",
				Return:     view.Return,
			}
		},
		"detailView": func(view PageView, g *domain.Game) CardView {
			return CardView{
				Game:     *g,
				Criteria: view.Criteria,
				PinURL:   gamePath(g.ID) + "/pin",
				Return:   view.Return,
				CloseURL: view.Links.Close,
			}
		},
		"pinIcon": func(pinned bool) template.HTML {
			if pinned {
				return "&#128274;"
			}
			return "&#128204;"
		},
		"rating": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"ratingInput": func(v, def float64) string {
			if v == def {
				return ""
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"ratingToInput": func(bound *float64) string {
			if bound == nil {
				return ""
			}
			return strconv.FormatFloat(*bound, 'f', -1, 64)
		},
		"hasGenre": func(c domain.FilterCriteria, genre string) bool {
			return slices.Contains(c.Genres, genre)
		},
		"playerOptions": func(maxPlayers int) []int {
			n := min(max(maxPlayers, 1), constants.MaxPlayerOption)
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}
