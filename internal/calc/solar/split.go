package solar

import "math"

// Horizontal is a measured daily global horizontal irradiation and its
// decomposition. Valid is false when the measurement or the extraterrestrial
// reference cannot support a decomposition; the numeric fields are then zero
// and must not be read as "no sun".
type Horizontal struct {
	Global         float64 `json:"global_kwh"`
	ClearnessIndex float64 `json:"clearness_index"`
	Diffuse        float64 `json:"diffuse_kwh"`
	Direct         float64 `json:"direct_kwh"`
	Valid          bool    `json:"valid"`
}

// diffuse fraction polynomial in the clearness index, powers 0..3
var diffuseCoeffs = [4]float64{1.39, -4.027, 5.531, -3.108}

// Split decomposes global horizontal irradiation into diffuse and direct
// parts with a clearness-index correlation.
func Split(global, extraterrestrial float64) Horizontal {
	if !usable(global) || !usable(extraterrestrial) {
		return Horizontal{}
	}

	kt := math.Min(1, global/extraterrestrial)

	frac := diffuseCoeffs[0] + kt*(diffuseCoeffs[1]+kt*(diffuseCoeffs[2]+kt*diffuseCoeffs[3]))
	diffuse := global * frac
	if diffuse < 0 {
		diffuse = 0
	}
	// Keep direct + diffuse == global: the correlation exceeds 1 for very
	// overcast days.
	if diffuse > global {
		diffuse = global
	}

	return Horizontal{
		Global:         global,
		ClearnessIndex: kt,
		Diffuse:        diffuse,
		Direct:         math.Max(0, global-diffuse),
		Valid:          true,
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
