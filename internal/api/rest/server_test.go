package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/ingest/espn"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/season"
	"github.com/fortuna/courtside/internal/service"
)

type stubStats struct {
	err     error
	seasons []string
}

func (s *stubStats) FetchSeasonStats(ctx context.Context, seasonID string) ([]nba.PlayerLine, error) {
	s.seasons = append(s.seasons, seasonID)
	if s.err != nil {
		return nil, s.err
	}
	return []nba.PlayerLine{
		{PlayerID: 1, Name: "Test Forward", Team: "BOS", GamesPlayed: 50, Points: 25.1},
	}, nil
}

type stubInjuries struct{}

func (stubInjuries) FetchInjuries(ctx context.Context) (map[string]espn.InjuryReport, error) {
	return map[string]espn.InjuryReport{}, nil
}

type stubBios struct{}

func (stubBios) FetchBios(ctx context.Context) (espn.BioDirectory, error) {
	return espn.BioDirectory{}, nil
}

func newTestServer(stats *stubStats) http.Handler {
	players := service.NewPlayerService(stats, stubInjuries{}, stubBios{}, nil)
	return NewServer("0", players).server.Handler
}

func doRequest(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubStats{}), http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "courtside", body["service"])
}

func TestGetSeason(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubStats{}), http.MethodGet, "/api/season")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]season.Window
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, season.Current(), body["current"])
	assert.Equal(t, season.Prior(), body["prior"])
}

func TestGetPlayers(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubStats{}), http.MethodGet, "/api/players")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var result service.PlayersResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, season.Current().StatsSeason, result.StatsSeason)
	require.Len(t, result.Players, 1)
	assert.Equal(t, "Test Forward", result.Players[0].Name)
	assert.Equal(t, "Healthy", result.Players[0].InjuryStatus)
}

func TestGetLastSeasonPlayers(t *testing.T) {
	stats := &stubStats{}
	rec := doRequest(t, newTestServer(stats), http.MethodGet, "/api/players/last-season")
	require.Equal(t, http.StatusOK, rec.Code)

	// The literal path segment must win over the {season} route variable.
	assert.Equal(t, []string{season.Prior().StatsSeason}, stats.seasons)
}

func TestGetPlayersBySeason(t *testing.T) {
	stats := &stubStats{}
	rec := doRequest(t, newTestServer(stats), http.MethodGet, "/api/players/2020-21")
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.PlayersResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "2020-21", result.StatsSeason)
	assert.Equal(t, []string{"2020-21"}, stats.seasons)
}

func TestGetPlayersBySeasonRejectsBadFormat(t *testing.T) {
	for _, bad := range []string{"2024", "24-25", "2024-256", "banana"} {
		t.Run(bad, func(t *testing.T) {
			stats := &stubStats{}
			rec := doRequest(t, newTestServer(stats), http.MethodGet, "/api/players/"+bad)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, stats.seasons, "a rejected season must not reach the sources")
		})
	}
}

func TestGetPlayersUpstreamFailure(t *testing.T) {
	stats := &stubStats{err: errors.New("stats provider down")}
	rec := doRequest(t, newTestServer(stats), http.MethodGet, "/api/players")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch NBA data", body["error"])
	assert.Contains(t, body["details"], "stats provider down")
}

func TestGetCacheInfo(t *testing.T) {
	handler := newTestServer(&stubStats{})
	doRequest(t, handler, http.MethodGet, "/api/players")

	rec := doRequest(t, handler, http.MethodGet, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 4)

	byFamily := make(map[string]map[string]interface{})
	for _, info := range infos {
		byFamily[info["family"].(string)] = info
	}
	assert.Equal(t, true, byFamily["players"]["populated"])
	assert.Equal(t, false, byFamily["players_prior"]["populated"])
}

func TestRefreshEndpointsArePostOnly(t *testing.T) {
	handler := newTestServer(&stubStats{})

	rec := doRequest(t, handler, http.MethodPost, "/api/refresh/injuries")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Injury cache refreshed", body["message"])

	rec = doRequest(t, handler, http.MethodPost, "/api/refresh/bios")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/refresh/injuries")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoveryMiddlewareCatchesPanics(t *testing.T) {
	panicky := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
