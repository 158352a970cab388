package design

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Helio/internal/calc/consumption"
	"Helio/internal/calc/sizing"
	"Helio/internal/calc/tilt"
	"Helio/internal/irradiance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticOptimizer() *tilt.Optimizer {
	monthly := map[time.Month]float64{}
	for m := time.January; m <= time.December; m++ {
		monthly[m] = 5.0
	}
	return tilt.New(irradiance.Static{Monthly: monthly}, tilt.Options{})
}

type optimizerFunc func(context.Context, tilt.Input) (tilt.Result, error)

func (f optimizerFunc) Optimize(ctx context.Context, in tilt.Input) (tilt.Result, error) {
	return f(ctx, in)
}

var cabin = []consumption.Device{
	{Name: "fridge", PowerW: 120, Quantity: 1, HoursPerDay: 10, Circuit: "AC"},
	{Name: "lights", PowerW: 8, Quantity: 6, HoursPerDay: 5, Circuit: "DC"},
}

func TestDesign_OffGrid(t *testing.T) {
	res, err := Design(context.Background(), staticOptimizer(), Input{
		Project: "cabin",
		Site:    tilt.Input{Latitude: 10, Longitude: -66},
		Devices: cabin,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.InDelta(t, 1440, res.Consumption.EnergyDailyWh, 1e-9)
	require.True(t, res.Tilt.Found())
	require.NotNil(t, res.Sizing)
	assert.Equal(t, sizing.ModeOffGrid, res.Sizing.Mode)
	require.NotNil(t, res.Sizing.Battery)

	want := 1440 / (res.Tilt.MinMonthlyIrradiance * 0.75)
	assert.InDelta(t, want, res.Sizing.Array.RequiredWp, 1e-9)
	assert.InDelta(t, 150, res.Sizing.InverterW, 1e-9)
}

func TestDesign_GridTied(t *testing.T) {
	res, err := Design(context.Background(), staticOptimizer(), Input{
		Site:            tilt.Input{Latitude: 10, Longitude: -66},
		Mode:            sizing.ModeGridTied,
		AnnualTargetKWh: 3000,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Sizing)
	assert.Nil(t, res.Sizing.Battery)
	assert.InDelta(t, 3000/(res.Tilt.AnnualYieldMWh*1000*0.75)*1000, res.Sizing.Array.RequiredWp, 1e-9)
}

func TestDesign_IrradianceUnavailable(t *testing.T) {
	opt := tilt.New(irradiance.Static{}, tilt.Options{})
	res, err := Design(context.Background(), opt, Input{Site: tilt.Input{Latitude: 10, Longitude: -66}, Devices: cabin})
	require.NoError(t, err)
	assert.Equal(t, StatusIrradianceUnavailable, res.Status)
	assert.Nil(t, res.Sizing)
	assert.Nil(t, res.Tilt.OptimalTiltDeg)
}

func TestDesign_Errors(t *testing.T) {
	called := false
	opt := optimizerFunc(func(context.Context, tilt.Input) (tilt.Result, error) {
		called = true
		return tilt.Result{}, nil
	})

	_, err := Design(context.Background(), opt, Input{Mode: "hybrid", Devices: cabin})
	assert.ErrorIs(t, err, sizing.ErrInvalidInput)

	_, err = Design(context.Background(), opt, Input{})
	assert.ErrorIs(t, err, sizing.ErrInvalidInput)

	_, err = Design(context.Background(), opt, Input{Devices: []consumption.Device{{PowerW: -1}}})
	assert.ErrorIs(t, err, consumption.ErrInvalidDevice)
	assert.False(t, called)

	boom := errors.New("boom")
	_, err = Design(context.Background(), optimizerFunc(func(context.Context, tilt.Input) (tilt.Result, error) {
		return tilt.Result{}, boom
	}), Input{Devices: cabin})
	assert.ErrorIs(t, err, boom)
}

func TestHandler_Calc(t *testing.T) {
	h := &Handler{Optimizer: staticOptimizer()}
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "ok", body: `{"site":{"latitude":10,"longitude":-66},"devices":[{"name":"tv","power_w":100,"hours_per_day":4}]}`, status: http.StatusOK},
		{name: "malformed", body: `{`, status: http.StatusBadRequest},
		{name: "bad site", body: `{"site":{"latitude":100},"devices":[{"name":"tv","power_w":100,"hours_per_day":4}]}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/pv/design", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
