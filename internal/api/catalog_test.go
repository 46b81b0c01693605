package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spilcafe-catalog/internal/config"
	"spilcafe-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `[
  {"id": 1, "title": "Catan", "genre": "Strategi", "rating": 8, "playtime": 90,
   "players": {"min": 3, "max": 4}, "difficulty": "Mellem", "language": "Dansk",
   "age": 10, "location": "Café", "shelf": "A3", "description": "Byg og handl."},
  {"id": 2, "title": "Codenames", "genre": ["Party"], "rating": 7, "playtime": 15,
   "players": {"min": 4, "max": 8}}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *CatalogClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCatalogClient(&config.Config{CatalogURL: srv.URL + "/games.json", FetchTimeout: 2 * time.Second})
}

func TestFetchGamesDecodesFeed(t *testing.T) {
	var hits int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/games.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feed))
	})

	games, err := client.FetchGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, 1, hits)
	assert.Equal(t, domain.GameID("1"), games[0].ID)
	assert.Equal(t, domain.Genres{"Strategi"}, games[0].Genre)
	assert.Equal(t, domain.Players{Min: 3, Max: 4}, games[0].Players)
	assert.Equal(t, "A3", games[0].Shelf.String())
	assert.Equal(t, domain.Genres{"Party"}, games[1].Genre)
}

func TestFetchGamesNonOKStatus(t *testing.T) {
	var hits int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := client.FetchGames(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, 1, hits, "no retry")
}

func TestFetchGamesMalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	})

	_, err := client.FetchGames(context.Background())
	assert.Error(t, err)
}

func TestFetchGamesCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchGames(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchGamesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewCatalogClient(&config.Config{CatalogURL: srv.URL, FetchTimeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := client.FetchGames(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
