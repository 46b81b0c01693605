package render

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"spilcafe-catalog/internal/domain"
	"spilcafe-catalog/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func games() []domain.Game {
	return []domain.Game{
		{ID: "1", Title: "Catan", Image: "https://img.example/catan.jpg", Rating: 8, Playtime: 90, Players: domain.Players{Min: 3, Max: 4}, Genre: domain.Genres{"Strategi"}, Difficulty: "Mellem", Language: "Dansk", Age: "10", Shelf: "A3", Description: "Byg <og> handl."},
		{ID: "2", Title: "Codenames", Rating: 7, Playtime: 15, Players: domain.Players{Min: 4, Max: 8}, Genre: domain.Genres{"Party"}, Pinned: true},
	}
}

func view(t *testing.T, c domain.FilterCriteria, panel string, gs []domain.Game) PageView {
	t.Helper()
	res := service.BrowseResult{Games: gs, Total: 2, Query: c}
	facets := service.Facets{Genres: []string{"Party", "Strategi"}, Difficulties: []string{"Mellem"}, Languages: []string{"Dansk"}, MaxPlayers: 8}
	return NewPageView(res, facets, service.Status{State: service.StateReady, Count: 2}, panel)
}

func mustRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestRenderDrawsOneCardPerGameInOrder(t *testing.T) {
	r := mustRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view(t, domain.DefaultCriteria(), "", games())))
	html := buf.String()

	assert.Equal(t, 2, strings.Count(html, `<article class="game-card`))
	catan := strings.Index(html, "<h3>Catan</h3>")
	codenames := strings.Index(html, "<h3>Codenames</h3>")
	require.NotEqual(t, -1, catan)
	require.NotEqual(t, -1, codenames)
	assert.Less(t, catan, codenames)

	assert.Contains(t, html, "3-4 personer")
	assert.Contains(t, html, "90 min.")
	assert.Contains(t, html, "Viser 2 af 2 spil")
	assert.Contains(t, html, "&#128204;", "unpinned icon")
	assert.Contains(t, html, "&#128274;", "pinned icon")
	assert.Contains(t, html, `action="/games/2/pin"`)
	assert.NotContains(t, html, "game-dialog")
	assert.NotContains(t, html, "filter-overlay")
}

func TestRenderIsFullRebuild(t *testing.T) {
	r := mustRenderer(t)

	var first, second bytes.Buffer
	require.NoError(t, r.Render(&first, view(t, domain.DefaultCriteria(), "", games())))
	require.NoError(t, r.Render(&second, view(t, domain.DefaultCriteria(), "", games()[1:])))

	assert.Contains(t, first.String(), "Catan")
	assert.NotContains(t, second.String(), "Catan")
	assert.Equal(t, 1, strings.Count(second.String(), `<article class="game-card`))
}

func TestRenderCarriesCriteriaInLinks(t *testing.T) {
	r := mustRenderer(t)
	c := domain.DefaultCriteria()
	c.Genres = []string{"Party"}
	c.Sort = domain.SortRating

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view(t, c, "", games()[1:])))
	html := buf.String()

	assert.Contains(t, html, `href="/games/2?genre=Party&amp;sort=rating"`)
	assert.Contains(t, html, `name="return" value="genre=Party&amp;sort=rating"`)
	assert.Contains(t, html, `href="/?genre=Party&amp;sort=rating&amp;panel=filter"`)
}

func TestRenderCardOpensDetailWithButton(t *testing.T) {
	r := mustRenderer(t)
	c := domain.DefaultCriteria()
	c.SearchText = "code"
	c.Genres = []string{"Party"}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view(t, c, PanelFilter, games()[1:])))
	html := buf.String()

	form := html[strings.Index(html, `<form class="card-open"`):]
	form = form[:strings.Index(form, "</form>")]
	assert.Contains(t, form, `method="get" action="/games/2"`)
	assert.Contains(t, form, `<input type="hidden" name="q" value="code">`)
	assert.Contains(t, form, `<input type="hidden" name="genre" value="Party">`)
	assert.Contains(t, form, `<button class="card-btn" type="submit"`)
	assert.Contains(t, html, `class="card-link" href="/games/2?genre=Party&amp;q=code" tabindex="-1"`)
	assert.Contains(t, html, `name="return" value="genre=Party&amp;q=code&amp;panel=filter"`)
}

func TestRenderFilterPanelReflectsCriteria(t *testing.T) {
	r := mustRenderer(t)
	c := domain.DefaultCriteria()
	c.Genres = []string{"Strategi"}
	c.PlayerCount = 4
	c.RatingFrom = 6.5

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view(t, c, PanelFilter, games())))
	html := buf.String()

	assert.Contains(t, html, `id="filter-overlay"`)
	assert.Contains(t, html, `value="Strategi" checked`)
	assert.NotContains(t, html, `value="Party" checked`)
	assert.Contains(t, html, `<option value="4" selected>`)
	assert.Contains(t, html, `name="rating_from" min="0" max="10" step="0.1" value="6.5"`)
	assert.Contains(t, html, `id="reset-filter" href="/"`)
}

func TestRenderMenuPanel(t *testing.T) {
	r := mustRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, view(t, domain.DefaultCriteria(), PanelMenu, games())))
	assert.Contains(t, buf.String(), `id="menu-overlay"`)

	buf.Reset()
	require.NoError(t, r.Render(&buf, view(t, domain.DefaultCriteria(), "bogus", games())))
	assert.NotContains(t, buf.String(), `id="menu-overlay"`)
}

func TestRenderDetail(t *testing.T) {
	r := mustRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.RenderDetail(&buf, view(t, domain.DefaultCriteria(), "", games()), games()[0]))
	html := buf.String()

	assert.Contains(t, html, `<dialog id="game-dialog" open`)
	assert.Contains(t, html, `<h2 id="game-title-dialog">Catan</h2>`)
	assert.Contains(t, html, "10 år")
	assert.Contains(t, html, "HYLDE: A3")
	assert.Contains(t, html, "Byg &lt;og&gt; handl.", "description is escaped")
	assert.Contains(t, html, `id="close-dialog" class="close" href="/"`)
}

func TestRenderStatusBanners(t *testing.T) {
	r := mustRenderer(t)

	tests := []struct {
		state service.LoadState
		want  string
	}{
		{service.StateLoading, "Spillene hentes"},
		{service.StateFailed, "Kataloget kunne ikke indlæses"},
	}
	for _, tc := range tests {
		t.Run(string(tc.state), func(t *testing.T) {
			v := view(t, domain.DefaultCriteria(), "", nil)
			v.Status.State = tc.state

			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, v))
			assert.Contains(t, buf.String(), tc.want)
			assert.NotContains(t, buf.String(), "Ingen spil matcher")
		})
	}

	t.Run("ready and nothing matches", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, view(t, domain.DefaultCriteria(), "", nil)))
		assert.Contains(t, buf.String(), "Ingen spil matcher")
	})
}

func TestNewFailsOnMissingControl(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range []string{"page.html", "card.html", "detail.html", "panels.html"} {
		data, err := templateFS.ReadFile("templates/" + name)
		require.NoError(t, err)
		fsys[name] = &fstest.MapFile{Data: data}
	}
	panels := string(fsys["panels.html"].Data)
	fsys["panels.html"].Data = []byte(strings.Replace(panels, `name="language"`, `name="lang"`, 1))

	_, err := newRenderer(fsys, "*.html")
	assert.ErrorIs(t, err, ErrMissingControl)
}

func TestNewFailsOnMissingTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"page.html": &fstest.MapFile{Data: []byte(`{{define "page"}}x{{end}}`)},
	}

	_, err := newRenderer(fsys, "*.html")
	assert.ErrorIs(t, err, ErrMissingTemplate)
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".game-card")
}
