package tilt

import "time"

// Month is the representative day of one calendar month.
type Month struct {
	Name      string     `json:"month"`
	Month     time.Month `json:"-"`
	Days      int        `json:"days_in_month"`
	DayOfYear int        `json:"day_of_year"`
}

// daysInMonth follows a 365-day year; February's 29th is never a
// representative day.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Calendar returns the representative days for the given day of month.
// Months shorter than day are left out.
func Calendar(day int) []Month {
	out := make([]Month, 0, 12)
	offset := 0
	for i, n := range daysInMonth {
		m := time.Month(i + 1)
		if day >= 1 && day <= n {
			out = append(out, Month{
				Name:      m.String(),
				Month:     m,
				Days:      n,
				DayOfYear: offset + day,
			})
		}
		offset += n
	}
	return out
}
