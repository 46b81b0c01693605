package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"spilcafe-catalog/internal/config"
	"spilcafe-catalog/internal/domain"
	"spilcafe-catalog/internal/pipeline"
	"spilcafe-catalog/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
)

var (
	ErrNotReady     = errors.New("catalog is not loaded")
	ErrGameNotFound = errors.New("game not found")
)

// CatalogSource delivers the full game feed.
type CatalogSource interface {
	FetchGames(ctx context.Context) ([]domain.Game, error)
}

type LoadState string

const (
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "failed"
)

type Status struct {
	State      LoadState `json:"state"`
	Count      int       `json:"count"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitzero"`
}

// Facets are the distinct values the filter controls offer.
type Facets struct {
	Genres       []string `json:"genres"`
	Difficulties []string `json:"difficulties"`
	Languages    []string `json:"languages"`
	MaxPlayers   int      `json:"max_players"`
}

type BrowseResult struct {
	Games []domain.Game         `json:"games"`
	Total int                   `json:"total"`
	Trace []pipeline.StageCount `json:"-"`
	Query domain.FilterCriteria `json:"criteria"`
}

// CatalogService is the single owner of the catalog store.
type CatalogService struct {
	source   CatalogSource
	store    *store.CatalogStore
	pipeline *pipeline.Pipeline
	cfg      *config.Config
	logger   zerolog.Logger

	mu       sync.RWMutex
	state    LoadState
	lastErr  error
	loadedAt time.Time

	group  *errgroup.Group
	cancel context.CancelFunc
}

func NewCatalogService(source CatalogSource, catalog *store.CatalogStore, cfg *config.Config, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		source:   source,
		store:    catalog,
		pipeline: pipeline.New(cfg.Locale),
		cfg:      cfg,
		logger:   logger,
		state:    StateLoading,
	}
}

// Start runs the initial fetch in the background so requests can be served
// (with a loading banner) while it is in flight.
func (s *CatalogService) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	s.mu.Lock()
	s.group = g
	s.cancel = cancel
	s.mu.Unlock()

	g.Go(func() error {
		if err := s.load(gctx); err != nil {
			s.logger.Error().Err(err).Msg("initial catalog fetch failed, catalog stays empty")
			return err
		}
		return nil
	})
}

// Wait blocks until the initial fetch has finished and returns its error.
func (s *CatalogService) Wait() error {
	s.mu.RLock()
	g := s.group
	s.mu.RUnlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// Stop cancels an in-flight initial fetch and waits for it.
func (s *CatalogService) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	s.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	_ = s.Wait()
}

// Reload fetches the feed again and replaces the catalog atomically. On
// failure the previous collection is kept.
func (s *CatalogService) Reload(ctx context.Context) error {
	s.logger.Info().Msg("reloading catalog")
	return s.load(ctx)
}

func (s *CatalogService) load(ctx context.Context) error {
	start := time.Now()

	games, err := s.source.FetchGames(ctx)
	if err == nil {
		var snapshotID string
		snapshotID, err = s.store.Load(games)
		if err == nil {
			s.mu.Lock()
			s.state = StateReady
			s.lastErr = nil
			s.loadedAt = time.Now()
			s.mu.Unlock()

			s.logger.Info().
				Str("snapshot_id", snapshotID).
				Int("count", len(games)).
				Dur("duration", time.Since(start)).
				Msg("catalog ready")
			return nil
		}
		err = fmt.Errorf("invalid catalog: %w", err)
	}

	s.mu.Lock()
	s.lastErr = err
	if s.state != StateReady {
		s.state = StateFailed
	}
	s.mu.Unlock()

	s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("catalog load failed")
	return err
}

func (s *CatalogService) Status() Status {
	s.mu.RLock()
	st := Status{State: s.state, LoadedAt: s.loadedAt}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	s.mu.RUnlock()

	st.Count = s.store.Len()
	st.SnapshotID = s.store.SnapshotID()
	return st
}

// Browse runs the filter/sort pipeline over the current catalog.
func (s *CatalogService) Browse(ctx context.Context, c domain.FilterCriteria) BrowseResult {
	all := s.store.All()
	games, trace := s.pipeline.ApplyWithTrace(all, c)

	logger := zerolog.Ctx(ctx)
	ev := logger.Debug()
	for _, st := range trace {
		if !st.Skipped {
			ev = ev.Int(st.Stage, st.Remaining)
		}
	}
	ev.Int("total", len(all)).Int("shown", len(games)).Msg("catalog filtered")

	return BrowseResult{Games: games, Total: len(all), Trace: trace, Query: c}
}

func (s *CatalogService) Game(id domain.GameID) (domain.Game, error) {
	g, ok := s.store.Get(id)
	if !ok {
		if s.store.Len() == 0 {
			return domain.Game{}, ErrNotReady
		}
		return domain.Game{}, fmt.Errorf("game %q: %w", id, ErrGameNotFound)
	}
	return g, nil
}

// TogglePin flips the pin of a game; unknown ids are ignored.
func (s *CatalogService) TogglePin(ctx context.Context, id domain.GameID) (pinned bool, found bool) {
	pinned, found = s.store.TogglePinned(id)
	zerolog.Ctx(ctx).Info().
		Str("game_id", id.String()).
		Bool("found", found).
		Bool("pinned", pinned).
		Msg("pin toggled")
	return pinned, found
}

func (s *CatalogService) Facets() Facets {
	var f Facets
	genres := map[string]bool{}
	difficulties := map[string]bool{}
	languages := map[string]bool{}

	for _, g := range s.store.All() {
		for _, tag := range g.Genre {
			genres[tag] = true
		}
		if g.Difficulty != "" {
			difficulties[g.Difficulty] = true
		}
		if g.Language != "" {
			languages[g.Language] = true
		}
		f.MaxPlayers = max(f.MaxPlayers, g.Players.Max)
	}

	col := collate.New(s.cfg.Locale)
	f.Genres = sortedKeys(col, genres)
	f.Difficulties = sortedKeys(col, difficulties)
	f.Languages = sortedKeys(col, languages)
	return f
}

func sortedKeys(col *collate.Collator, set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.SortFunc(out, col.CompareString)
	return out
}
