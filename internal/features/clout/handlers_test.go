package clout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, svc *Service, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleStats(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.addUser("u2", 1200)

	rec := serve(t, svc, "/api/v1/users/u2/clout")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1200, stats.Score)
	assert.Equal(t, TierContributor, stats.Tier)

	rec = serve(t, svc, "/api/v1/users/ghost/clout")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleLeaderboard(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.addUser("u2", 300)

	rec := serve(t, svc, "/api/v1/leaderboard?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "u2", entries[0].UserID)

	rec = serve(t, svc, "/api/v1/leaderboard?limit=десять")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlatformStats(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.posts = 3

	rec := serve(t, svc, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var st PlatformStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 3, st.Posts)
	assert.Equal(t, 1, st.Users)
}
