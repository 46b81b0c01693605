// Package store owns the in-memory game catalog.
package store

import (
	"errors"
	"fmt"
	"sync"

	"spilcafe-catalog/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyID        = errors.New("game has an empty id")
	ErrDuplicateID    = errors.New("duplicate game id")
	ErrInvalidPlayers = errors.New("players.min is greater than players.max")
)

// CatalogStore holds the authoritative collection of games. The collection is
// only ever replaced as a whole; the pinned flag is the one per-record mutation.
type CatalogStore struct {
	mu         sync.RWMutex
	games      []domain.Game
	index      map[domain.GameID]int
	snapshotID string
	logger     zerolog.Logger
}

func NewCatalogStore(logger zerolog.Logger) *CatalogStore {
	return &CatalogStore{
		index:  make(map[domain.GameID]int),
		logger: logger,
	}
}

// Load validates records and replaces the held collection with a copy of them.
// On error the previous collection is kept. It returns the new snapshot id.
func (s *CatalogStore) Load(records []domain.Game) (string, error) {
	games := make([]domain.Game, len(records))
	index := make(map[domain.GameID]int, len(records))

	for i, g := range records {
		if g.ID == "" {
			return "", fmt.Errorf("record %d (%q): %w", i, g.Title, ErrEmptyID)
		}
		if _, dup := index[g.ID]; dup {
			return "", fmt.Errorf("record %d: %w: %s", i, ErrDuplicateID, g.ID)
		}
		if g.Players.Min > g.Players.Max {
			return "", fmt.Errorf("game %s: %w (%d > %d)", g.ID, ErrInvalidPlayers, g.Players.Min, g.Players.Max)
		}
		g.Genre = append(domain.Genres(nil), g.Genre...)
		games[i] = g
		index[g.ID] = i
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate snapshot id: %w", err)
	}

	s.mu.Lock()
	s.games = games
	s.index = index
	s.snapshotID = id
	s.mu.Unlock()

	s.logger.Info().Str("snapshot_id", id).Int("count", len(games)).Msg("catalog loaded")
	return id, nil
}

// All returns a copy of the collection in load order.
func (s *CatalogStore) All() []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Game, len(s.games))
	copy(out, s.games)
	return out
}

func (s *CatalogStore) Get(id domain.GameID) (domain.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Game{}, false
	}
	return s.games[i], true
}

// TogglePinned flips the pinned flag of the game with the given id.
// An unknown id is ignored and reported through found.
func (s *CatalogStore) TogglePinned(id domain.GameID) (pinned bool, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		s.logger.Debug().Str("game_id", id.String()).Msg("pin toggle ignored, unknown game")
		return false, false
	}
	s.games[i].Pinned = !s.games[i].Pinned
	return s.games[i].Pinned, true
}

func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

func (s *CatalogStore) SnapshotID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotID
}
