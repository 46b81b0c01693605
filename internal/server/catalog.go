package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"spilcafe-catalog/internal/config"
	"spilcafe-catalog/internal/constants"
	"spilcafe-catalog/internal/criteria"
	"spilcafe-catalog/internal/domain"
	"spilcafe-catalog/internal/middleware"
	"spilcafe-catalog/internal/render"
	"spilcafe-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// CatalogServer turns requests into collect → filter → render cycles.
type CatalogServer struct {
	svc      *service.CatalogService
	renderer *render.Renderer
}

func NewCatalogServer(svc *service.CatalogService, renderer *render.Renderer) *CatalogServer {
	return &CatalogServer{svc: svc, renderer: renderer}
}

func NewRouter(s *CatalogServer, cfg *config.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.RequestLogger())
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(chimw.Timeout(constants.RequestTimeout))

	r.Get("/", s.index)
	r.Get("/games/{id}", s.detail)
	r.Post("/games/{id}/pin", s.pin)
	r.Get("/healthz", s.health)
	r.Handle("/static/*", render.StaticHandler())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(c.Handler)
		r.Get("/games", s.listGames)
		r.Get("/games/{id}", s.getGame)
		r.Post("/games/{id}/pin", s.togglePin)
		r.Get("/catalog/facets", s.facets)
		r.Post("/catalog/reload", s.reload)
	})

	return r
}

func (s *CatalogServer) page(r *http.Request) render.PageView {
	c := criteria.Collect(r.URL.Query())
	res := s.svc.Browse(r.Context(), c)
	return render.NewPageView(res, s.svc.Facets(), s.svc.Status(), r.URL.Query().Get("panel"))
}

func (s *CatalogServer) index(w http.ResponseWriter, r *http.Request) {
	view := s.page(r)
	s.html(w, r, http.StatusOK, func(buf io.Writer) error {
		return s.renderer.Render(buf, view)
	})
	zerolog.Ctx(r.Context()).Debug().Int("shown", len(view.Games)).Msg("games rendered")
}

func (s *CatalogServer) detail(w http.ResponseWriter, r *http.Request) {
	view := s.page(r)
	id := domain.GameID(chi.URLParam(r, "id"))

	game, err := s.svc.Game(id)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("game_id", id.String()).Msg("detail requested for unknown game")
		view.NotFound = true
		s.html(w, r, http.StatusNotFound, func(buf io.Writer) error {
			return s.renderer.Render(buf, view)
		})
		return
	}

	s.html(w, r, http.StatusOK, func(buf io.Writer) error {
		return s.renderer.RenderDetail(buf, view, game)
	})
}

// pin toggles and redirects back to the grid, which re-filters and re-renders.
func (s *CatalogServer) pin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.svc.TogglePin(r.Context(), domain.GameID(chi.URLParam(r, "id")))

	http.Redirect(w, r, returnURL(r.PostForm.Get("return")), http.StatusSeeOther)
}

// returnURL rebuilds the grid URL from a submitted query string. Only
// criteria controls and a known panel survive, so the redirect always stays
// on this site.
func returnURL(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "/"
	}
	q := criteria.Encode(criteria.Collect(values))
	if panel := values.Get("panel"); panel == render.PanelFilter || panel == render.PanelMenu {
		q.Set("panel", panel)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func (s *CatalogServer) health(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Status()
	code := http.StatusOK
	if st.State != service.StateReady {
		code = http.StatusServiceUnavailable
	}
	respond(w, code, st)
}

func (s *CatalogServer) listGames(w http.ResponseWriter, r *http.Request) {
	res := s.svc.Browse(r.Context(), criteria.Collect(r.URL.Query()))
	respond(w, http.StatusOK, res)
}

func (s *CatalogServer) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.svc.Game(domain.GameID(chi.URLParam(r, "id")))
	switch {
	case errors.Is(err, service.ErrNotReady):
		respondError(w, http.StatusServiceUnavailable, err)
	case err != nil:
		respondError(w, http.StatusNotFound, err)
	default:
		respond(w, http.StatusOK, game)
	}
}

type pinResponse struct {
	ID     domain.GameID `json:"id"`
	Pinned bool          `json:"pinned"`
	Found  bool          `json:"found"`
}

func (s *CatalogServer) togglePin(w http.ResponseWriter, r *http.Request) {
	id := domain.GameID(chi.URLParam(r, "id"))
	pinned, found := s.svc.TogglePin(r.Context(), id)
	respond(w, http.StatusOK, pinResponse{ID: id, Pinned: pinned, Found: found})
}

func (s *CatalogServer) facets(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.svc.Facets())
}

func (s *CatalogServer) reload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.ReloadTimeout)
	defer cancel()

	if err := s.svc.Reload(ctx); err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	respond(w, http.StatusOK, s.svc.Status())
}

// html renders into a buffer first so a template error never leaves a half
// written page behind.
func (s *CatalogServer) html(w http.ResponseWriter, r *http.Request, status int, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respond(w, status, map[string]string{"error": err.Error()})
}
