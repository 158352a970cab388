package solar

import "math"

// DefaultAlbedo is the ground reflectance used when none is configured.
const DefaultAlbedo = 0.2

// Tilted is the daily irradiation on an equator-facing plane tilted by Tilt
// radians. Global is the peak-sun-hours equivalent used for array sizing.
type Tilted struct {
	Tilt       float64 `json:"tilt_rad"`
	BeamFactor float64 `json:"beam_factor"`
	Direct     float64 `json:"direct_kwh"`
	Diffuse    float64 `json:"diffuse_kwh"`
	Reflected  float64 `json:"reflected_kwh"`
	Global     float64 `json:"global_kwh"`
	Valid      bool    `json:"valid"`
}

// BeamFactor returns Rb, the ratio of daily beam irradiation on the tilted
// plane to that on the horizontal, for latitude lat, declination decl,
// horizontal sunset hour angle ws and tilt beta. Southern latitudes are
// mirrored so the plane always faces the equator. A zero horizontal
// denominator yields 0.
func BeamFactor(lat, decl, ws, beta float64) float64 {
	if lat < 0 {
		lat, decl = -lat, -decl
	}

	den := math.Cos(lat)*math.Cos(decl)*math.Sin(ws) + ws*math.Sin(lat)*math.Sin(decl)
	if den == 0 {
		return 0
	}

	tl := lat - beta
	wt := math.Min(ws, SunsetHourAngle(tl, decl))
	num := math.Cos(tl)*math.Cos(decl)*math.Sin(wt) + wt*math.Sin(tl)*math.Sin(decl)
	return num / den
}

// Tilt transposes one day's horizontal irradiation onto a plane of slope
// beta (radians, caller keeps it within [0, π/2]). The diffuse part blends a
// beam-weighted circumsolar share with an isotropic sky, weighted by the
// anisotropy index direct/extraterrestrial. The result is a pure function of
// its arguments.
func Tilt(beta, lat float64, a Astro, h Horizontal, albedo float64) Tilted {
	if !h.Valid || !usable(h.Global) || a.Extraterrestrial <= 0 {
		return Tilted{Tilt: beta}
	}

	rb := BeamFactor(lat, a.Declination, a.SunsetHourAngle, beta)
	direct := math.Max(0, h.Direct*rb)

	ai := h.Direct / a.Extraterrestrial
	ai = math.Max(0, math.Min(1, ai))
	sky := 0.5 * (1 + math.Cos(beta))
	diffuse := h.Diffuse*ai*rb + h.Diffuse*(1-ai)*sky
	if diffuse < 0 {
		diffuse = 0
	}

	reflected := albedo * h.Global * 0.5 * (1 - math.Cos(beta))

	return Tilted{
		Tilt:       beta,
		BeamFactor: rb,
		Direct:     direct,
		Diffuse:    diffuse,
		Reflected:  reflected,
		Global:     direct + diffuse + reflected,
		Valid:      true,
	}
}
