package solar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraterrestrial_NonPolarLatitudes(t *testing.T) {
	for lat := -66.5; lat <= 66.5; lat += 0.5 {
		for day := 1; day <= 365; day++ {
			a := ForDay(DegToRad(lat), day)
			if a.SunsetHourAngle <= 0 || a.SunsetHourAngle >= math.Pi {
				t.Fatalf("lat=%.1f day=%d: sunset hour angle %f outside (0, π)", lat, day, a.SunsetHourAngle)
			}
			if a.Extraterrestrial <= 0 {
				t.Fatalf("lat=%.1f day=%d: extraterrestrial %f not positive", lat, day, a.Extraterrestrial)
			}
		}
	}
}

func TestExtraterrestrial_EquatorAtEquinox(t *testing.T) {
	for _, day := range []int{80, 266} {
		decl := Declination(day)
		assert.InDelta(t, 0, decl, 0.01, "declination near zero on day %d", day)

		a := Extraterrestrial(0, decl, day)
		assert.InDelta(t, math.Pi/2, a.SunsetHourAngle, 1e-3)
		// ~10.4 kWh/m² at the equator around the equinoxes
		assert.InDelta(t, 10.4, a.Extraterrestrial, 0.4)
	}
}

func TestExtraterrestrial_Polar(t *testing.T) {
	lat := DegToRad(89)

	night := ForDay(lat, 355)
	assert.Equal(t, 0.0, night.SunsetHourAngle)
	assert.Equal(t, 0.0, night.Extraterrestrial)

	day := ForDay(lat, 172)
	assert.Equal(t, math.Pi, day.SunsetHourAngle)
	assert.Greater(t, day.Extraterrestrial, 10.0)

	south := ForDay(-lat, 172)
	assert.Equal(t, 0.0, south.SunsetHourAngle)
	assert.Equal(t, 0.0, south.Extraterrestrial)
}

func TestDeclination_Solstices(t *testing.T) {
	assert.InDelta(t, DegToRad(23.44), Declination(172), DegToRad(0.3))
	assert.InDelta(t, DegToRad(-23.44), Declination(355), DegToRad(0.3))
}

func TestEccentricity(t *testing.T) {
	assert.InDelta(t, 1.033, Eccentricity(365), 1e-4)
	assert.InDelta(t, 0.967, Eccentricity(183), 1e-3)
}

func TestSplit_SumsToGlobal(t *testing.T) {
	for _, h0 := range []float64{4, 8.5, 11.2} {
		for g := 0.25; g <= 12; g += 0.25 {
			h := Split(g, h0)
			require.True(t, h.Valid)
			assert.InDelta(t, g, h.Direct+h.Diffuse, 1e-12, "g=%f h0=%f", g, h0)
			assert.GreaterOrEqual(t, h.Direct, 0.0)
			assert.GreaterOrEqual(t, h.Diffuse, 0.0)
			assert.GreaterOrEqual(t, h.ClearnessIndex, 0.0)
			assert.LessOrEqual(t, h.ClearnessIndex, 1.0)
		}
	}
}

func TestSplit_Unusable(t *testing.T) {
	tests := []struct {
		name   string
		global float64
		h0     float64
	}{
		{"zero global", 0, 10},
		{"negative global", -1, 10},
		{"NaN global", math.NaN(), 10},
		{"infinite global", math.Inf(1), 10},
		{"zero extraterrestrial", 5, 0},
		{"negative extraterrestrial", 5, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Split(tt.global, tt.h0)
			assert.False(t, h.Valid)
			assert.Equal(t, Horizontal{}, h)
		})
	}
}

func TestSplit_ClearSkyHasLowDiffuseShare(t *testing.T) {
	h := Split(7, 10)
	assert.InDelta(t, 0.7, h.ClearnessIndex, 1e-12)
	assert.Less(t, h.Diffuse/h.Global, 0.35)
}

func dayAt(latDeg float64, day int, kt float64) (float64, Astro, Horizontal) {
	lat := DegToRad(latDeg)
	a := ForDay(lat, day)
	return lat, a, Split(kt*a.Extraterrestrial, a.Extraterrestrial)
}

func TestTilt_FlatEqualsHorizontal(t *testing.T) {
	lat, a, h := dayAt(35, 100, 0.55)
	res := Tilt(0, lat, a, h, DefaultAlbedo)
	require.True(t, res.Valid)
	assert.Equal(t, 1.0, res.BeamFactor)
	assert.Equal(t, 0.0, res.Reflected)
	assert.InDelta(t, h.Global, res.Global, 1e-9)
}

func TestTilt_Idempotent(t *testing.T) {
	lat, a, h := dayAt(-22, 200, 0.6)
	first := Tilt(DegToRad(25), lat, a, h, DefaultAlbedo)
	second := Tilt(DegToRad(25), lat, a, h, DefaultAlbedo)
	assert.Equal(t, first, second)
}

func TestTilt_InvalidPropagates(t *testing.T) {
	lat, a, _ := dayAt(40, 100, 0.5)
	res := Tilt(DegToRad(30), lat, a, Split(0, a.Extraterrestrial), DefaultAlbedo)
	assert.False(t, res.Valid)
	assert.Equal(t, 0.0, res.Global)

	lat, polar, _ := dayAt(89, 355, 0.5)
	res = Tilt(DegToRad(30), lat, polar, Horizontal{Global: 1, Direct: 1, Valid: true}, DefaultAlbedo)
	assert.False(t, res.Valid)
}

func TestTilt_WinterFavoursSteepSummerFavoursFlat(t *testing.T) {
	lat, winter, hw := dayAt(40, 349, 0.5)
	flat := Tilt(0, lat, winter, hw, DefaultAlbedo)
	steep := Tilt(DegToRad(40), lat, winter, hw, DefaultAlbedo)
	assert.Greater(t, steep.Global, flat.Global)

	lat, summer, hs := dayAt(40, 166, 0.6)
	flat = Tilt(0, lat, summer, hs, DefaultAlbedo)
	wall := Tilt(math.Pi/2, lat, summer, hs, DefaultAlbedo)
	assert.Less(t, wall.Global, flat.Global)
}

func TestTilt_ComponentsNonNegative(t *testing.T) {
	for _, latDeg := range []float64{-60, -30, 0, 30, 60} {
		for day := 15; day <= 365; day += 30 {
			lat, a, h := dayAt(latDeg, day, 0.5)
			for deg := 0.0; deg <= 90; deg += 5 {
				res := Tilt(DegToRad(deg), lat, a, h, DefaultAlbedo)
				if !res.Valid {
					continue
				}
				assert.GreaterOrEqual(t, res.Direct, 0.0)
				assert.GreaterOrEqual(t, res.Diffuse, 0.0)
				assert.GreaterOrEqual(t, res.Reflected, 0.0)
				assert.InDelta(t, res.Direct+res.Diffuse+res.Reflected, res.Global, 1e-12)
			}
		}
	}
}

func TestBeamFactor_MirrorsSouthernHemisphere(t *testing.T) {
	lat, decl := DegToRad(33), Declination(40)
	ws := SunsetHourAngle(lat, decl)
	north := BeamFactor(lat, decl, ws, DegToRad(30))
	south := BeamFactor(-lat, -decl, ws, DegToRad(30))
	assert.Equal(t, north, south)
	assert.Greater(t, north, 1.0)
}

func TestBeamFactor_DegenerateDenominator(t *testing.T) {
	assert.Equal(t, 0.0, BeamFactor(0, 0, 0, DegToRad(20)))
}

// tiltCurve samples Global from 0 to 90 degrees in 1 degree steps.
func tiltCurve(latDeg float64, day int, kt float64) []float64 {
	lat, a, h := dayAt(latDeg, day, kt)
	curve := make([]float64, 91)
	for deg := range curve {
		curve[deg] = Tilt(DegToRad(float64(deg)), lat, a, h, DefaultAlbedo).Global
	}
	return curve
}

func TestTilt_SingleOptimumPerDay(t *testing.T) {
	const eps = 1e-9
	for _, latDeg := range []float64{40, -35, 55} {
		for day := 15; day <= 365; day += 30 {
			for _, kt := range []float64{0.5, 0.6} {
				curve := tiltCurve(latDeg, day, kt)
				peak := 0
				for deg, g := range curve {
					if g > curve[peak] {
						peak = deg
					}
				}
				for deg := 1; deg <= peak; deg++ {
					require.GreaterOrEqual(t, curve[deg], curve[deg-1]-eps, "lat %v day %d kt %v rising at %d", latDeg, day, kt, deg)
				}
				for deg := peak + 1; deg < len(curve); deg++ {
					require.LessOrEqual(t, curve[deg], curve[deg-1]+eps, "lat %v day %d kt %v falling at %d", latDeg, day, kt, deg)
				}
			}
		}
	}
}

func TestTilt_WinterRisesTowardLatitudeMinusDeclination(t *testing.T) {
	tests := []struct {
		lat  float64
		days []int
	}{
		{lat: 40, days: []int{15, 46, 288, 319, 349}},
		{lat: -35, days: []int{135, 166, 196, 227}},
	}
	for _, tt := range tests {
		for _, day := range tt.days {
			decl := RadToDeg(Declination(day))
			if tt.lat < 0 {
				decl = -decl
			}
			limit := int(math.Floor(math.Abs(tt.lat) - decl))
			require.Greater(t, limit, 40)

			curve := tiltCurve(tt.lat, day, 0.55)
			for deg := 1; deg <= limit; deg++ {
				assert.GreaterOrEqual(t, curve[deg], curve[deg-1], "lat %v day %d at %d", tt.lat, day, deg)
			}
		}
	}
}

func TestTilt_SummerSolsticePeaksNearFlat(t *testing.T) {
	curve := tiltCurve(40, 166, 0.6)
	assert.Greater(t, curve[0], curve[17])
	assert.Greater(t, curve[17], curve[90])
}
