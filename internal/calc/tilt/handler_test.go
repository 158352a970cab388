package tilt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Calc(t *testing.T) {
	h := &Handler{Optimizer: New(&fakeSource{values: tropicalSeries}, Options{})}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "ok", body: `{"latitude":10,"longitude":-66,"day":15}`, status: http.StatusOK},
		{name: "default day", body: `{"latitude":10,"longitude":-66}`, status: http.StatusOK},
		{name: "malformed", body: `{"latitude":`, status: http.StatusBadRequest},
		{name: "out of range", body: `{"latitude":120,"longitude":0}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/user/tools/tilt/calc", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Calc(rec, req)
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var res Result
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			require.NotNil(t, res.OptimalTiltDeg)
			assert.Equal(t, StatusOK, res.Status)
			assert.Len(t, res.Monthly, 12)
			assert.Equal(t, "January", res.Monthly[0].Name)
		})
	}
}

func TestHandler_CalcUnavailable(t *testing.T) {
	h := &Handler{Optimizer: New(&fakeSource{}, Options{})}
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/tilt/calc", strings.NewReader(`{"latitude":10,"longitude":-66}`))
	rec := httptest.NewRecorder()
	h.Calc(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, StatusUnavailable, body["status"])
	assert.Nil(t, body["optimal_tilt_deg"])
	assert.Equal(t, []any{}, body["monthly"])
}
