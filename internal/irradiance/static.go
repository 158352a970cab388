package irradiance

import (
	"context"
	"fmt"
	"time"
)

// Static serves one fixed daily value per calendar month, independent of
// coordinate. It backs manual entry when the archive cannot cover a site.
type Static struct {
	Monthly map[time.Month]float64
}

func (s Static) DailyHorizontal(_ context.Context, _, _ float64, date time.Time) (float64, error) {
	v, ok := s.Monthly[date.Month()]
	if !ok {
		return 0, fmt.Errorf("%w: no manual value for %s", ErrNoData, date.Month())
	}
	return v, nil
}
