package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tilt "Helio/internal/calc/tilt"
	config "Helio/internal/config"
	irradiance "Helio/internal/irradiance"
	repo "Helio/internal/repo"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.TokenKey = "test-key"
	cfg.Server.RateLimit = 1000
	cfg.Server.RateBurst = 1000

	monthly := map[time.Month]float64{}
	for m := time.January; m <= time.December; m++ {
		monthly[m] = 5.5
	}
	archive := irradiance.NewCached(irradiance.Static{Monthly: monthly}, time.Hour)
	opts := optimizerOptions(&cfg)

	router := mux.NewRouter()
	HandleList(router, &cfg, services{
		repo:      repo.NewMemory(),
		archive:   archive,
		optimizer: tilt.New(archive, opts),
		options:   opts,
	})
	srv := httptest.NewServer(CORS(cfg.Server.CORSOrigins, router))
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_RegisterThenCalculate(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/user/tools/tilt/calc", "application/json",
		strings.NewReader(`{"latitude":10,"longitude":-66}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/register", "application/json",
		strings.NewReader(`{"login":"alice","email":"a@example.com","password":"secret1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session_token" {
			session = c
		}
	}
	require.NotNil(t, session)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/user/tools/tilt/calc",
		strings.NewReader(`{"latitude":10,"longitude":-66}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Value)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
