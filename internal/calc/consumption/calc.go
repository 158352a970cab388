// Package consumption totals a load table into daily energy and peak power,
// split by AC and DC circuits.
package consumption

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidDevice = errors.New("consumption: invalid device")

const (
	CircuitAC = "AC"
	CircuitDC = "DC"
)

type Device struct {
	Name        string  `json:"name"`
	PowerW      float64 `json:"power_w"`
	Quantity    int     `json:"quantity"`
	HoursPerDay float64 `json:"hours_per_day"`
	Circuit     string  `json:"circuit"`
}

type Input struct {
	Devices []Device `json:"devices"`
}

// Line is one device row after totals.
type Line struct {
	Device
	PowerTotalW float64 `json:"power_total_w"`
	EnergyWh    float64 `json:"energy_wh"`
}

type Result struct {
	Lines         []Line  `json:"lines"`
	PowerACW      float64 `json:"power_ac_w"`
	PowerDCW      float64 `json:"power_dc_w"`
	PowerTotalW   float64 `json:"power_total_w"`
	EnergyACWh    float64 `json:"energy_ac_wh"`
	EnergyDCWh    float64 `json:"energy_dc_wh"`
	EnergyDailyWh float64 `json:"energy_daily_wh"`
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (d Device) validate() error {
	switch {
	case !finite(d.PowerW) || d.PowerW < 0:
		return fmt.Errorf("%w: %q power %v", ErrInvalidDevice, d.Name, d.PowerW)
	case d.Quantity < 0:
		return fmt.Errorf("%w: %q quantity %d", ErrInvalidDevice, d.Name, d.Quantity)
	case !finite(d.HoursPerDay) || d.HoursPerDay < 0 || d.HoursPerDay > 24:
		return fmt.Errorf("%w: %q hours %v", ErrInvalidDevice, d.Name, d.HoursPerDay)
	}
	return nil
}

// Calculate sums the table. An empty circuit counts as AC; quantity 0 means 1.
func Calculate(in Input) (Result, error) {
	res := Result{Lines: make([]Line, 0, len(in.Devices))}
	for _, d := range in.Devices {
		if err := d.validate(); err != nil {
			return Result{}, err
		}
		if d.Quantity == 0 {
			d.Quantity = 1
		}
		d.Circuit = strings.ToUpper(strings.TrimSpace(d.Circuit))
		if d.Circuit == "" {
			d.Circuit = CircuitAC
		}

		l := Line{Device: d, PowerTotalW: d.PowerW * float64(d.Quantity)}
		l.EnergyWh = l.PowerTotalW * d.HoursPerDay

		switch d.Circuit {
		case CircuitAC:
			res.PowerACW += l.PowerTotalW
			res.EnergyACWh += l.EnergyWh
		case CircuitDC:
			res.PowerDCW += l.PowerTotalW
			res.EnergyDCWh += l.EnergyWh
		default:
			return Result{}, fmt.Errorf("%w: %q circuit %q", ErrInvalidDevice, d.Name, d.Circuit)
		}
		res.Lines = append(res.Lines, l)
	}
	res.PowerTotalW = res.PowerACW + res.PowerDCW
	res.EnergyDailyWh = res.EnergyACWh + res.EnergyDCWh
	return res, nil
}
