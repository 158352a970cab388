// Package tilt finds the fixed panel slope that maximizes annual irradiation
// on an equator-facing plane, from one measured day per month.
package tilt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"Helio/internal/calc/solar"
	"Helio/internal/irradiance"
	"Helio/internal/log"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidInput rejects coordinates or days the model cannot evaluate.
var ErrInvalidInput = errors.New("tilt: invalid input")

const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

type Input struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Day is the representative day of month; 0 means the 15th.
	Day int `json:"day"`
}

// Options tune the search. Zero fields take the defaults from DefaultOptions.
// MaxDeg and Albedo accept an explicit zero, so nil is their unset value.
type Options struct {
	// MinValidMonths is the coverage below which no optimum is reported.
	MinValidMonths int
	StepDeg        int
	MaxDeg         *int
	Albedo         *float64
	Concurrency    int
	// ReferenceYear dates the archive requests.
	ReferenceYear int
}

func DefaultOptions() Options {
	return Options{
		MinValidMonths: 10,
		StepDeg:        5,
		MaxDeg:         Int(90),
		Albedo:         Float(solar.DefaultAlbedo),
		Concurrency:    12,
		ReferenceYear:  2023,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinValidMonths <= 0 {
		o.MinValidMonths = d.MinValidMonths
	}
	if o.StepDeg <= 0 {
		o.StepDeg = d.StepDeg
	}
	if o.MaxDeg == nil || *o.MaxDeg < 0 || *o.MaxDeg > 90 {
		o.MaxDeg = d.MaxDeg
	}
	if o.Albedo == nil || *o.Albedo < 0 || math.IsNaN(*o.Albedo) {
		o.Albedo = d.Albedo
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.ReferenceYear <= 0 {
		o.ReferenceYear = d.ReferenceYear
	}
	return o
}

func Int(v int) *int { return &v }
func Float(v float64) *float64 { return &v }

// MonthResult is one month evaluated at the chosen slope.
type MonthResult struct {
	Month
	Astro      solar.Astro      `json:"astro"`
	Horizontal solar.Horizontal `json:"horizontal"`
	Tilted     solar.Tilted     `json:"tilted"`
}

// Candidate is the annual outcome of one slope.
type Candidate struct {
	TiltDeg        int     `json:"tilt_deg"`
	AnnualYieldMWh float64 `json:"annual_yield_mwh"`
	MinMonthly     float64 `json:"min_monthly_kwh"`
}

// Result is a full recomputation; it is never updated in place. A nil
// OptimalTiltDeg means the data did not cover enough of the year.
type Result struct {
	Status         string `json:"status"`
	OptimalTiltDeg *int   `json:"optimal_tilt_deg"`
	// MinMonthlyIrradiance is the worst month's tilted irradiation at the
	// optimum, kWh/m²/day (minimum peak sun hours).
	MinMonthlyIrradiance float64       `json:"min_monthly_irradiance"`
	AnnualYieldMWh       float64       `json:"annual_yield_mwh"`
	ValidMonths          int           `json:"valid_months"`
	Monthly              []MonthResult `json:"monthly"`
	Candidates           []Candidate   `json:"candidates,omitempty"`
}

func (r Result) Found() bool { return r.OptimalTiltDeg != nil }

type Optimizer struct {
	Source  irradiance.Source
	Options Options
}

func New(src irradiance.Source, opts Options) *Optimizer {
	return &Optimizer{Source: src, Options: opts.withDefaults()}
}

func (in Input) Validate() error {
	switch {
	case math.IsNaN(in.Latitude) || in.Latitude < -90 || in.Latitude > 90:
		return fmt.Errorf("%w: latitude %v", ErrInvalidInput, in.Latitude)
	case math.IsNaN(in.Longitude) || in.Longitude < -180 || in.Longitude > 180:
		return fmt.Errorf("%w: longitude %v", ErrInvalidInput, in.Longitude)
	case in.Day < 0 || in.Day > 31:
		return fmt.Errorf("%w: day %d", ErrInvalidInput, in.Day)
	}
	return nil
}

type sample struct {
	month Month
	astro solar.Astro
	horiz solar.Horizontal
}

// Optimize fetches one day per month concurrently, then scans slopes
// 0..MaxDeg in StepDeg increments. A month whose data cannot be fetched or
// decomposed is dropped; the run only fails on invalid input or a done ctx.
func (o *Optimizer) Optimize(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	opts := o.Options.withDefaults()
	if in.Day == 0 {
		in.Day = 15
	}
	lat := solar.DegToRad(in.Latitude)

	months := Calendar(in.Day)
	samples := make([]sample, len(months))
	valid := make([]bool, len(months))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, m := range months {
		samples[i] = sample{month: m, astro: solar.ForDay(lat, m.DayOfYear)}
		g.Go(func() error {
			date := time.Date(opts.ReferenceYear, m.Month, in.Day, 0, 0, 0, 0, time.UTC)
			gh, err := o.Source.DailyHorizontal(ctx, in.Latitude, in.Longitude, date)
			if err != nil {
				log.Warnw("month excluded", "month", m.Name, "day_of_year", m.DayOfYear, "error", err)
				return nil
			}
			h := solar.Split(gh, samples[i].astro.Extraterrestrial)
			if !h.Valid {
				log.Warnw("month excluded", "month", m.Name, "day_of_year", m.DayOfYear,
					"global_kwh", gh, "extraterrestrial_kwh", samples[i].astro.Extraterrestrial)
				return nil
			}
			samples[i].horiz = h
			valid[i] = true
			return nil
		})
	}
	// month failures are logged and absorbed; only ctx ends the run
	g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	usable := make([]sample, 0, len(samples))
	for i, s := range samples {
		if valid[i] {
			usable = append(usable, s)
		}
	}

	if len(usable) < opts.MinValidMonths {
		log.Warnw("insufficient irradiance coverage", "valid_months", len(usable), "required", opts.MinValidMonths,
			"latitude", in.Latitude, "longitude", in.Longitude)
		return Result{Status: StatusUnavailable, ValidMonths: len(usable), Monthly: []MonthResult{}}, nil
	}

	res := search(lat, usable, opts)
	log.Infow("tilt optimized", "latitude", in.Latitude, "longitude", in.Longitude,
		"valid_months", len(usable), "tilt_deg", *res.OptimalTiltDeg, "annual_yield_mwh", res.AnnualYieldMWh)
	return res, nil
}

func search(lat float64, usable []sample, opts Options) Result {
	weights := make([]float64, len(usable))
	for i, s := range usable {
		weights[i] = float64(s.month.Days)
	}
	gi := make([]float64, len(usable))

	maxDeg, albedo := *opts.MaxDeg, *opts.Albedo
	candidates := make([]Candidate, 0, maxDeg/opts.StepDeg+1)
	for deg := 0; deg <= maxDeg; deg += opts.StepDeg {
		beta := solar.DegToRad(float64(deg))
		for i, s := range usable {
			gi[i] = solar.Tilt(beta, lat, s.astro, s.horiz, albedo).Global
		}
		candidates = append(candidates, Candidate{
			TiltDeg:        deg,
			AnnualYieldMWh: floats.Dot(gi, weights) / 1000,
			MinMonthly:     floats.Min(gi),
		})
	}

	opt := candidates[bestCandidate(candidates)]
	beta := solar.DegToRad(float64(opt.TiltDeg))
	monthly := make([]MonthResult, len(usable))
	for i, s := range usable {
		monthly[i] = MonthResult{
			Month:      s.month,
			Astro:      s.astro,
			Horizontal: s.horiz,
			Tilted:     solar.Tilt(beta, lat, s.astro, s.horiz, albedo),
		}
	}

	tiltDeg := opt.TiltDeg
	return Result{
		Status:               StatusOK,
		OptimalTiltDeg:       &tiltDeg,
		MinMonthlyIrradiance: opt.MinMonthly,
		AnnualYieldMWh:       opt.AnnualYieldMWh,
		ValidMonths:          len(usable),
		Monthly:              monthly,
		Candidates:           candidates,
	}
}

// bestCandidate returns the index of the highest annual yield. The comparison
// is strict, so ties keep the flatter slope.
func bestCandidate(candidates []Candidate) int {
	best := 0
	for i, c := range candidates {
		if c.AnnualYieldMWh > candidates[best].AnnualYieldMWh {
			best = i
		}
	}
	return best
}
