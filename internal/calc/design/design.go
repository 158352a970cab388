// Package design chains the load table, the tilt search and equipment sizing
// into one PV system proposal.
package design

import (
	"context"
	"fmt"

	"Helio/internal/calc/consumption"
	"Helio/internal/calc/sizing"
	"Helio/internal/calc/tilt"
	"Helio/internal/log"
)

const (
	StatusOK                    = "ok"
	StatusIrradianceUnavailable = "irradiance_unavailable"
)

// Optimizer is satisfied by *tilt.Optimizer.
type Optimizer interface {
	Optimize(ctx context.Context, in tilt.Input) (tilt.Result, error)
}

type Input struct {
	Project         string               `json:"project"`
	Site            tilt.Input           `json:"site"`
	Mode            string               `json:"mode"`
	Devices         []consumption.Device `json:"devices"`
	AnnualTargetKWh float64              `json:"annual_target_kwh"`
	Params          sizing.Params        `json:"params"`
}

type Result struct {
	Project     string             `json:"project"`
	Status      string             `json:"status"`
	Site        tilt.Input         `json:"site"`
	Consumption consumption.Result `json:"consumption"`
	Tilt        tilt.Result        `json:"tilt"`
	Sizing      *sizing.Result     `json:"sizing,omitempty"`
}

// Design runs consumption, the optimizer and sizing in that order. When the
// optimizer finds no slope the result has StatusIrradianceUnavailable and no
// sizing.
func Design(ctx context.Context, opt Optimizer, in Input) (Result, error) {
	if in.Mode == "" {
		in.Mode = sizing.ModeOffGrid
	}
	if in.Mode != sizing.ModeOffGrid && in.Mode != sizing.ModeGridTied {
		return Result{}, fmt.Errorf("%w: mode %q", sizing.ErrInvalidInput, in.Mode)
	}

	load, err := consumption.Calculate(consumption.Input{Devices: in.Devices})
	if err != nil {
		return Result{}, err
	}
	if in.Mode == sizing.ModeOffGrid && load.EnergyDailyWh <= 0 {
		return Result{}, fmt.Errorf("%w: off-grid design needs a load", sizing.ErrInvalidInput)
	}

	tr, err := opt.Optimize(ctx, in.Site)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Project:     in.Project,
		Site:        in.Site,
		Consumption: load,
		Tilt:        tr,
	}
	if !tr.Found() {
		log.Warnw("design without irradiance", "project", in.Project,
			"latitude", in.Site.Latitude, "longitude", in.Site.Longitude, "valid_months", tr.ValidMonths)
		res.Status = StatusIrradianceUnavailable
		return res, nil
	}

	sz, err := sizing.Calculate(sizing.Input{
		Mode:             in.Mode,
		DailyWh:          load.EnergyDailyWh,
		ACPeakW:          load.PowerACW,
		MinPSH:           tr.MinMonthlyIrradiance,
		AnnualYieldKWhM2: tr.AnnualYieldMWh * 1000,
		AnnualTargetKWh:  in.AnnualTargetKWh,
		Params:           in.Params,
	})
	if err != nil {
		return Result{}, err
	}
	res.Status = StatusOK
	res.Sizing = &sz
	log.Infow("design complete", "project", in.Project, "mode", in.Mode,
		"tilt_deg", *tr.OptimalTiltDeg, "installed_wp", sz.Array.InstalledWp)
	return res, nil
}
