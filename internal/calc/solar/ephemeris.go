package solar

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	meeus "github.com/soniakeys/meeus/v3/solar"
)

// EphemerisDeclination returns the apparent solar declination in radians at
// t from Meeus' solar coordinates. It is the reference for the daily Fourier
// fit in Declination.
func EphemerisDeclination(t time.Time) float64 {
	_, dec := meeus.ApparentEquatorial(julian.TimeToJD(t.UTC()))
	return dec.Rad()
}

// DeclinationError is the Fourier fit's deviation from the ephemeris at noon
// UTC of the given day of a reference year, in degrees.
func DeclinationError(year, dayOfYear int) float64 {
	noon := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	return RadToDeg(Declination(dayOfYear) - EphemerisDeclination(noon))
}
