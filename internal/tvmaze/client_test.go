package tvmaze

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bingers/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	var cfg config.Config
	cfg.TVMaze.BaseURL = ts.URL + "/"
	cfg.TVMaze.TimeoutSeconds = 5
	return NewClient(cfg, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSearchShows(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/shows", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, `[
			{"score": 0.9, "show": {"id": 20263, "name": "The Orville", "language": "English", "status": "Running",
			 "runtime": 60, "network": {"id": 4, "name": "FOX"}, "webChannel": null, "updated": 100}},
			{"score": 0.4, "show": {"id": 7480, "name": "Star Trek: Discovery", "language": "English", "status": "Ended",
			 "runtime": null, "averageRuntime": 55, "network": null, "webChannel": {"id": 107, "name": "CBS All Access"}}}
		]`)
	})

	results, err := client.SearchShows(context.Background(), "  orville ")
	require.NoError(t, err)
	assert.Equal(t, "orville", gotQuery)
	require.Len(t, results, 2)

	assert.Equal(t, 20263, results[0].Show.ID)
	assert.Equal(t, "FOX", results[0].Show.NetworkName())
	assert.Equal(t, 60, results[0].Show.RuntimeMinutes())
	assert.Equal(t, int64(100), results[0].Show.Updated)

	assert.Equal(t, "CBS All Access", results[1].Show.NetworkName())
	assert.Equal(t, 55, results[1].Show.RuntimeMinutes())
}

func TestSearchShows_EmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.SearchShows(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchShows_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{"message":"upstream down"}`)
	})
	_, err := client.SearchShows(context.Background(), "orville")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestSearchShows_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	var cfg config.Config
	cfg.TVMaze.BaseURL = url
	cfg.TVMaze.TimeoutSeconds = 1
	client := NewClient(cfg, zerolog.Nop())

	_, err := client.SearchShows(context.Background(), "orville")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search shows")
}

func TestShow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/shows/1":
			writeJSON(w, http.StatusOK, `{"id": 1, "name": "Under the Dome", "status": "Ended", "summary": "<p><b>Under the Dome</b> is a story.</p>"}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"name":"Not Found","status":404}`)
		}
	})

	show, err := client.Show(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Under the Dome", show.Name)
	assert.Equal(t, "Unknown", show.NetworkName())
	assert.Equal(t, 0, show.RuntimeMinutes())
	assert.Equal(t, "Under the Dome is a story.", show.PlainSummary())

	_, err = client.Show(context.Background(), 2)
	assert.True(t, errors.Is(err, ErrShowNotFound))
}

func TestEpisodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows/20263/episodes", r.URL.Path)
		writeJSON(w, http.StatusOK, `[
			{"id": 3, "name": "Old Wounds", "season": 2, "number": 1, "airdate": "2018-12-30", "airstamp": "2018-12-31T01:00:00+00:00", "runtime": 60},
			{"id": 1, "name": "Command Performance", "season": 1, "number": 2, "airdate": "2017-09-17", "airstamp": "2017-09-18T01:00:00+00:00"},
			{"id": 9, "name": "Behind the scenes", "season": 1, "number": null, "airdate": "2017-09-20"},
			{"id": 2, "name": "Old Wounds", "season": 1, "number": 1, "airdate": "2017-09-10", "airstamp": ""}
		]`)
	})

	episodes, err := client.Episodes(context.Background(), 20263)
	require.NoError(t, err)
	require.Len(t, episodes, 3)

	assert.Equal(t, []int{2, 1, 3}, []int{episodes[0].ID, episodes[1].ID, episodes[2].ID})
	assert.Equal(t, 60, episodes[2].Runtime)
	assert.Equal(t, time.Date(2017, 9, 18, 1, 0, 0, 0, time.UTC), episodes[1].Airstamp.UTC())
	assert.True(t, episodes[0].Airstamp.IsZero())
}

func TestEpisodes_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{}`)
	})
	_, err := client.Episodes(context.Background(), 5)
	assert.ErrorIs(t, err, ErrShowNotFound)
}

func TestShowUpdates(t *testing.T) {
	var gotSince string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/updates/shows", r.URL.Path)
		gotSince = r.URL.Query().Get("since")
		writeJSON(w, http.StatusOK, `{"1": 1500000000, "20263": 1600000000, "bogus": 1}`)
	})

	updates, err := client.ShowUpdates(context.Background(), "week")
	require.NoError(t, err)
	assert.Equal(t, "week", gotSince)
	assert.Equal(t, map[int]int64{1: 1500000000, 20263: 1600000000}, updates)

	_, err = client.ShowUpdates(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, gotSince)
}

func TestEpisodeAired(t *testing.T) {
	now := time.Date(2020, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, Episode{Airstamp: now.Add(-time.Hour)}.Aired(now))
	assert.False(t, Episode{Airstamp: now.Add(time.Hour)}.Aired(now))
	assert.True(t, Episode{Airdate: "2020-01-10"}.Aired(now))
	assert.False(t, Episode{Airdate: "2020-01-11"}.Aired(now))
	assert.False(t, Episode{}.Aired(now))
	assert.False(t, Episode{Airdate: "soon"}.Aired(now))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", PlainText("  "))
	assert.Equal(t, "First. Second line.", PlainText("<p>First.</p><p>Second\n line.</p>"))
	assert.Equal(t, "bare text", PlainText("bare <i>text</i>"))
	assert.Equal(t, "a b", PlainText("<ul><li>a</li><li>b</li></ul>"))
}
