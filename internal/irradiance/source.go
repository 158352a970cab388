// Package irradiance supplies daily global horizontal irradiation for a
// coordinate and date. Sources compose: an HTTP archive client wrapped in a
// retry policy, optionally behind a cache.
package irradiance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MJToKWh converts MJ/m² to kWh/m².
const MJToKWh = 0.277778

var (
	// ErrNoData means the source answered but holds no value for the day.
	ErrNoData = errors.New("irradiance: no data for requested day")
	// ErrRetriesExhausted wraps the last failure once a RetryPolicy gives up.
	ErrRetriesExhausted = errors.New("irradiance: retries exhausted")
)

// Source returns daily global horizontal irradiation in kWh/m² for the
// given coordinate (degrees) and calendar date.
type Source interface {
	DailyHorizontal(ctx context.Context, lat, lon float64, date time.Time) (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, lat, lon float64, date time.Time) (float64, error)

func (f SourceFunc) DailyHorizontal(ctx context.Context, lat, lon float64, date time.Time) (float64, error) {
	return f(ctx, lat, lon, date)
}

// StatusError is returned for non-200 upstream responses.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("irradiance: upstream returned %d %s", e.StatusCode, e.Status)
}
