package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() (*Server, *mockStore) {
	store := newMockStore()
	gen := &cycleGenerator{script: scammerTurnScript("Sure, okay dear.")}
	srv := NewServer(Config{Port: "0"}, store, gen)
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestListScenarios(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodGet, "/api/scenarios")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grandson")
}

func TestStatusUnknownSimulation(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodGet, "/api/status/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStopUnknownSimulationHandler(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodPost, "/api/simulations/does-not-exist/stop")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSimulationsEmpty(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodGet, "/api/simulations")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simulations")
}

func TestGetSimulationNotFound(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodGet, "/api/simulations/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAudioNotFound(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodGet, "/api/audio/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(t, srv, http.MethodOptions, "/api/simulations")
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
