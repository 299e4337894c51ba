package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/db"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlx.DB) {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database.DB))

	logger := zaptest.NewLogger(t)
	tournamentStore := store.NewTournamentStore(database)
	generation := service.NewGenerationService(database, tournamentStore, logger)
	app := &application{
		logger:      logger,
		tournaments: service.NewTournamentService(database, tournamentStore, service.NewEntrantResolver(tournamentStore, nil), generation, logger),
		matches:     service.NewMatchService(tournamentStore),
	}

	server := httptest.NewServer(app.routes())
	t.Cleanup(func() {
		server.Close()
		database.Close()
	})
	return server, database
}

func doJSON(t *testing.T, method, url string, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func TestGenerateEndpoint(t *testing.T) {
	server, database := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/tournaments", `{"name":"Torneio","format":"DRAW_A_B"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tournamentID := body["id"].(string)

	for _, id := range []int{4, 8, 15, 16} {
		_, err := database.Exec("INSERT INTO pairings (id, tournament_id, lifecycle_status) VALUES (?, ?, 'CONFIRMED_CAPTAIN_FULL')", id, tournamentID)
		require.NoError(t, err)
	}

	actor := uuid.New()
	resp, body = doJSON(t, http.MethodPost, server.URL+"/tournaments/"+tournamentID+"/generate", `{"seed":"http"}`,
		map[string]string{middleware.UserIDHeader: actor.String()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["stagesCreated"])
	assert.Equal(t, float64(4), body["matchesCreated"])
	assert.Equal(t, "http", body["seedUsed"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/tournaments/"+tournamentID+"/structure", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stages := body["stages"].([]any)
	require.Len(t, stages, 2)
	first := stages[0].(map[string]any)
	assert.Equal(t, "Quadro Principal", first["name"])
	rounds := first["rounds"].([]any)
	opener := rounds[0].(map[string]any)["matches"].([]any)[0].(map[string]any)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/matches/"+opener["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["next"])
	assert.NotNil(t, body["loserNext"])

	req, err := http.NewRequest(http.MethodGet, server.URL+"/tournaments/"+tournamentID+"/audit", nil)
	require.NoError(t, err)
	auditResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer auditResp.Body.Close()
	var entries []map[string]any
	require.NoError(t, json.NewDecoder(auditResp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, actor.String(), entries[0]["userId"])
	assert.Equal(t, "GENERATE_BRACKET", entries[0]["action"])
}

func TestGenerateEndpointErrors(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/tournaments", `{"name":"Torneio","format":"CHAMPIONSHIP_ROUND_ROBIN"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tournamentID := body["id"].(string)

	testCases := []struct {
		name         string
		path         string
		body         string
		expectedHTTP int
		expectedCode string
	}{
		{"unknown tournament", "/tournaments/" + uuid.NewString() + "/generate", `{}`, http.StatusNotFound, "TOURNAMENT_NOT_FOUND"},
		{"bad tournament id", "/tournaments/nope/generate", `{}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", "/tournaments/" + tournamentID + "/generate", `{"shuffle":true}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"manual without participants", "/tournaments/" + tournamentID + "/generate", `{"source":"manual"}`, http.StatusBadRequest, "NO_PARTICIPANTS"},
		{"unknown format", "/tournaments/" + tournamentID + "/generate", `{"format":"SWISS"}`, http.StatusBadRequest, "UNKNOWN_FORMAT"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, server.URL+tc.path, tc.body, nil)
			assert.Equal(t, tc.expectedHTTP, resp.StatusCode)
			assert.Equal(t, tc.expectedCode, body["code"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/tournaments", `{"name":"Torneio","format":"MANUAL"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/tournaments/"+body["id"].(string)+"/generate", `{}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "bracket_engine_generation_total")
}
