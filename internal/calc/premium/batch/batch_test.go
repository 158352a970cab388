package batch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Helio/internal/calc/tilt"
	"Helio/internal/irradiance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// latitude-dependent stand-in: sunnier toward the equator
func byLatitude(_ context.Context, lat, _ float64, _ time.Time) (float64, error) {
	if lat > 60 {
		return 0, irradiance.ErrNoData
	}
	return 6 - lat/20, nil
}

func optimizer() *tilt.Optimizer {
	return tilt.New(irradiance.SourceFunc(byLatitude), tilt.Options{})
}

func TestCalculateTilt(t *testing.T) {
	res, err := CalculateTilt(context.Background(), optimizer(), TiltBatchInput{Sites: []tilt.Input{
		{Latitude: 40, Longitude: 0},
		{Latitude: 5, Longitude: 0},
		{Latitude: 70, Longitude: 0},
	}})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, 1, res.Best)
	assert.False(t, res.Results[2].Found())
}

func TestCalculateTilt_NoneFound(t *testing.T) {
	res, err := CalculateTilt(context.Background(), optimizer(), TiltBatchInput{Sites: []tilt.Input{{Latitude: 75}}})
	require.NoError(t, err)
	assert.Equal(t, -1, res.Best)
}

func TestCalculateTilt_Rejects(t *testing.T) {
	_, err := CalculateTilt(context.Background(), optimizer(), TiltBatchInput{})
	assert.ErrorIs(t, err, ErrBatch)

	_, err = CalculateTilt(context.Background(), optimizer(), TiltBatchInput{Sites: make([]tilt.Input, MaxSites+1)})
	assert.ErrorIs(t, err, ErrBatch)

	_, err = CalculateTilt(context.Background(), optimizer(), TiltBatchInput{Sites: []tilt.Input{{Latitude: -91}}})
	assert.ErrorIs(t, err, tilt.ErrInvalidInput)
}

func TestHandler_Tilt(t *testing.T) {
	h := &Handler{Optimizer: optimizer()}

	rec := httptest.NewRecorder()
	h.Tilt(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sites":[{"latitude":10,"longitude":1}]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"best":0`)

	rec = httptest.NewRecorder()
	h.Tilt(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sites":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
