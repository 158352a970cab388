package sites

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"Helio/internal/auth"
	"Helio/internal/calc/tilt"
	"Helio/internal/irradiance"
	"Helio/internal/repo"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router(h *Handler, userID int) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != 0 {
				req = req.WithContext(auth.WithUser(req.Context(), userID, "alice"))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/sites", h.List).Methods("GET")
	r.HandleFunc("/sites", h.Create).Methods("POST")
	r.HandleFunc("/sites/{id:[0-9]+}", h.Get).Methods("GET")
	r.HandleFunc("/sites/{id:[0-9]+}", h.Delete).Methods("DELETE")
	r.HandleFunc("/sites/{id:[0-9]+}/tilt", h.Tilt).Methods("GET")
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func newHandler() *Handler {
	monthly := map[time.Month]float64{}
	for m := time.January; m <= time.December; m++ {
		monthly[m] = 5
	}
	return &Handler{
		Repo:      repo.NewMemory(),
		Optimizer: tilt.New(irradiance.Static{Monthly: monthly}, tilt.Options{}),
	}
}

func TestSites_CRUD(t *testing.T) {
	h := newHandler()
	r := router(h, 7)

	rec := do(r, "POST", "/sites", `{"name":"roof","latitude":10,"longitude":-66}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created repo.Site
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 15, created.Day)

	rec = do(r, "GET", "/sites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []repo.Site
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)

	path := "/sites/" + strconv.Itoa(created.ID)
	assert.Equal(t, http.StatusOK, do(r, "GET", path, "").Code)

	rec = do(r, "GET", path+"/tilt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res tilt.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.NotNil(t, res.OptimalTiltDeg)

	assert.Equal(t, http.StatusNotFound, do(router(h, 8), "GET", path, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "DELETE", path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, "DELETE", path, "").Code)
}

func TestSites_Create_Rejects(t *testing.T) {
	r := router(newHandler(), 7)
	for _, body := range []string{
		`{`,
		`{"name":" ","latitude":10,"longitude":0}`,
		`{"name":"pole","latitude":91,"longitude":0}`,
	} {
		assert.Equal(t, http.StatusBadRequest, do(r, "POST", "/sites", body).Code, body)
	}
}

func TestSites_Unauthorized(t *testing.T) {
	r := router(newHandler(), 0)
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/sites", "").Code)
}
