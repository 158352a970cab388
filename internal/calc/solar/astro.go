// Package solar holds the daily radiation model used for tilt optimization:
// solar declination, extraterrestrial irradiation, the split of measured
// horizontal irradiation into beam and diffuse parts, and the transposition
// of those parts onto a tilted plane.
//
// All angles are radians and all energies are kWh/m² per day.
package solar

import "math"

// SolarConstant is the mean extraterrestrial irradiance in W/m².
const SolarConstant = 1367.0

// Astro is the astronomical context of one day at one latitude.
type Astro struct {
	DayOfYear   int     `json:"day_of_year"`
	Declination float64 `json:"declination_rad"`
	// SunsetHourAngle is 0 during polar night and π during polar day.
	SunsetHourAngle float64 `json:"sunset_hour_angle_rad"`
	Eccentricity    float64 `json:"eccentricity_factor"`
	// Extraterrestrial is the daily irradiation on a horizontal plane at the
	// top of the atmosphere, kWh/m².
	Extraterrestrial float64 `json:"extraterrestrial_kwh"`
}

// Declination returns the solar declination for a day of year in [1, 366]
// using the three-harmonic Fourier series (Spencer, as given by Cooper/Iqbal).
func Declination(dayOfYear int) float64 {
	g := 2 * math.Pi * float64(dayOfYear-1) / 365
	return 0.006918 -
		0.399912*math.Cos(g) + 0.070257*math.Sin(g) -
		0.006758*math.Cos(2*g) + 0.000907*math.Sin(2*g) -
		0.002697*math.Cos(3*g) + 0.00148*math.Sin(3*g)
}

// Eccentricity is the Earth-orbit correction factor for a day of year.
func Eccentricity(dayOfYear int) float64 {
	return 1 + 0.033*math.Cos(2*math.Pi*float64(dayOfYear)/365)
}

// SunsetHourAngle returns ω_s for the given latitude and declination.
// It never returns NaN: polar day yields π and polar night yields 0.
func SunsetHourAngle(lat, decl float64) float64 {
	arg := -math.Tan(lat) * math.Tan(decl)
	switch {
	case arg < -1:
		return math.Pi
	case arg > 1:
		return 0
	default:
		return math.Acos(arg)
	}
}

// Extraterrestrial computes the astronomical context for a latitude and day.
func Extraterrestrial(lat, decl float64, dayOfYear int) Astro {
	e0 := Eccentricity(dayOfYear)
	a := Astro{
		DayOfYear:    dayOfYear,
		Declination:  decl,
		Eccentricity: e0,
	}

	arg := -math.Tan(lat) * math.Tan(decl)
	var wh float64
	switch {
	case arg > 1:
		// polar night
		a.SunsetHourAngle = 0
	case arg < -1:
		// midnight sun: only the latitude/declination term survives
		a.SunsetHourAngle = math.Pi
		wh = 24 * SolarConstant * e0 * math.Sin(lat) * math.Sin(decl)
	default:
		ws := math.Acos(arg)
		a.SunsetHourAngle = ws
		wh = 24 / math.Pi * SolarConstant * e0 *
			(math.Cos(lat)*math.Cos(decl)*math.Sin(ws) + ws*math.Sin(lat)*math.Sin(decl))
	}
	if wh < 0 {
		wh = 0
	}
	a.Extraterrestrial = wh / 1000
	return a
}

// ForDay is a shorthand for Extraterrestrial(lat, Declination(day), day).
func ForDay(lat float64, dayOfYear int) Astro {
	return Extraterrestrial(lat, Declination(dayOfYear), dayOfYear)
}

func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }
