// Package sizing turns a load and the site's irradiation into array, battery,
// controller, inverter and cable sizes.
package sizing

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("sizing: invalid input")

const (
	ModeOffGrid  = "off_grid"
	ModeGridTied = "grid_tied"
)

const (
	// copper resistivity, Ω·mm²/m
	copperRho    = 0.0172
	safetyFactor = 1.25
)

// StandardSections are the commercial conductor cross-sections in mm².
var StandardSections = []float64{1.5, 2.5, 4, 6, 10, 16, 25, 35, 50, 70, 95, 120, 150, 185, 240}

// Params carry equipment ratings. Zero fields take the defaults.
type Params struct {
	SystemVoltage    float64 `json:"system_voltage"`
	PanelWp          float64 `json:"panel_wp"`
	PanelVmp         float64 `json:"panel_vmp"`
	PanelIsc         float64 `json:"panel_isc"`
	PerformanceRatio float64 `json:"performance_ratio"`
	BatteryVoltage   float64 `json:"battery_voltage"`
	BatteryAh        float64 `json:"battery_ah"`
	DepthOfDischarge float64 `json:"depth_of_discharge"`
	BatteryEff       float64 `json:"battery_efficiency"`
	AutonomyDays     float64 `json:"autonomy_days"`
	ACVoltage        float64 `json:"ac_voltage"`
	CableLengthM     float64 `json:"cable_length_m"`
	VoltageDropPct   float64 `json:"voltage_drop_pct"`
}

func DefaultParams() Params {
	return Params{
		SystemVoltage:    24,
		PanelWp:          400,
		PanelVmp:         31,
		PanelIsc:         13.5,
		PerformanceRatio: 0.75,
		BatteryVoltage:   12,
		BatteryAh:        200,
		DepthOfDischarge: 0.5,
		BatteryEff:       0.9,
		AutonomyDays:     3,
		ACVoltage:        230,
		CableLengthM:     20,
		VoltageDropPct:   3,
	}
}

func (p Params) WithDefaults() Params {
	d := DefaultParams()
	fill := func(v *float64, def float64) {
		if *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = def
		}
	}
	fill(&p.SystemVoltage, d.SystemVoltage)
	fill(&p.PanelWp, d.PanelWp)
	fill(&p.PanelVmp, d.PanelVmp)
	fill(&p.PanelIsc, d.PanelIsc)
	fill(&p.PerformanceRatio, d.PerformanceRatio)
	fill(&p.BatteryVoltage, d.BatteryVoltage)
	fill(&p.BatteryAh, d.BatteryAh)
	fill(&p.DepthOfDischarge, d.DepthOfDischarge)
	fill(&p.BatteryEff, d.BatteryEff)
	fill(&p.AutonomyDays, d.AutonomyDays)
	fill(&p.ACVoltage, d.ACVoltage)
	fill(&p.CableLengthM, d.CableLengthM)
	fill(&p.VoltageDropPct, d.VoltageDropPct)
	if p.PerformanceRatio > 1 {
		p.PerformanceRatio = d.PerformanceRatio
	}
	if p.DepthOfDischarge > 1 {
		p.DepthOfDischarge = d.DepthOfDischarge
	}
	if p.BatteryEff > 1 {
		p.BatteryEff = d.BatteryEff
	}
	return p
}

type Array struct {
	RequiredWp      float64 `json:"required_wp"`
	Panels          int     `json:"panels"`
	SeriesPerString int     `json:"series_per_string"`
	Strings         int     `json:"strings"`
	InstalledWp     float64 `json:"installed_wp"`
}

type Battery struct {
	CapacityAh float64 `json:"capacity_ah"`
	Series     int     `json:"series"`
	Parallel   int     `json:"parallel"`
	Units      int     `json:"units"`
	StoredKWh  float64 `json:"stored_kwh"`
}

type Cable struct {
	CurrentA       float64 `json:"current_a"`
	RequiredMM2    float64 `json:"required_mm2"`
	SectionMM2     float64 `json:"section_mm2"`
	StandardSize   bool    `json:"standard_size"`
	VoltageDropPct float64 `json:"voltage_drop_pct"`
}

func ceilInt(v float64) int {
	// guards against 2.0000000001 from float division
	return int(math.Ceil(v - 1e-9))
}

func layout(requiredWp float64, p Params) Array {
	a := Array{RequiredWp: requiredWp}
	a.Panels = max(1, ceilInt(requiredWp/p.PanelWp))
	a.SeriesPerString = max(1, ceilInt(p.SystemVoltage/p.PanelVmp))
	a.Strings = max(1, ceilInt(float64(a.Panels)/float64(a.SeriesPerString)))
	a.Panels = a.Strings * a.SeriesPerString
	a.InstalledWp = float64(a.Panels) * p.PanelWp
	return a
}

// OffGridArray sizes the array for the worst month: dailyWh must be covered
// by minPSH peak sun hours at the performance ratio.
func OffGridArray(dailyWh, minPSH float64, p Params) (Array, error) {
	p = p.WithDefaults()
	if dailyWh <= 0 || minPSH <= 0 {
		return Array{}, fmt.Errorf("%w: daily %v Wh, min PSH %v", ErrInvalidInput, dailyWh, minPSH)
	}
	return layout(dailyWh/(minPSH*p.PerformanceRatio), p), nil
}

// GridTiedArray sizes the array to meet an annual target from the annual
// in-plane irradiation in kWh/m².
func GridTiedArray(annualTargetKWh, annualYieldKWhM2 float64, p Params) (Array, error) {
	p = p.WithDefaults()
	if annualTargetKWh <= 0 || annualYieldKWhM2 <= 0 {
		return Array{}, fmt.Errorf("%w: target %v kWh, yield %v kWh/m²", ErrInvalidInput, annualTargetKWh, annualYieldKWhM2)
	}
	return layout(annualTargetKWh/(annualYieldKWhM2*p.PerformanceRatio)*1000, p), nil
}

func BatteryBank(dailyWh float64, p Params) (Battery, error) {
	p = p.WithDefaults()
	if dailyWh <= 0 {
		return Battery{}, fmt.Errorf("%w: daily %v Wh", ErrInvalidInput, dailyWh)
	}
	b := Battery{
		CapacityAh: dailyWh * p.AutonomyDays / (p.SystemVoltage * p.DepthOfDischarge * p.BatteryEff),
		Series:     max(1, ceilInt(p.SystemVoltage/p.BatteryVoltage)),
	}
	b.Parallel = max(1, ceilInt(b.CapacityAh/p.BatteryAh))
	b.Units = b.Series * b.Parallel
	b.StoredKWh = float64(b.Units) * p.BatteryVoltage * p.BatteryAh / 1000
	return b, nil
}

// ControllerCurrent is the charge controller rating for the array's strings.
func ControllerCurrent(a Array, p Params) float64 {
	p = p.WithDefaults()
	return float64(a.Strings) * p.PanelIsc * safetyFactor
}

func InverterPower(peakW float64) float64 {
	return peakW * safetyFactor
}

// CableSection sizes a two-conductor run carrying powerW at voltage.
func CableSection(powerW float64, p Params) (Cable, error) {
	p = p.WithDefaults()
	if powerW <= 0 {
		return Cable{}, fmt.Errorf("%w: power %v W", ErrInvalidInput, powerW)
	}
	c := Cable{CurrentA: powerW / p.ACVoltage}
	c.RequiredMM2 = 2 * p.CableLengthM * c.CurrentA * copperRho / (p.VoltageDropPct / 100 * p.ACVoltage)
	c.SectionMM2 = math.Ceil(c.RequiredMM2)
	for _, s := range StandardSections {
		if s >= c.RequiredMM2 {
			c.SectionMM2 = s
			c.StandardSize = true
			break
		}
	}
	c.VoltageDropPct = 2 * p.CableLengthM * c.CurrentA * copperRho / c.SectionMM2 / p.ACVoltage * 100
	return c, nil
}

type Input struct {
	Mode    string  `json:"mode"`
	DailyWh float64 `json:"daily_wh"`
	ACPeakW float64 `json:"ac_peak_w"`
	MinPSH  float64 `json:"min_psh"`
	// AnnualYieldKWhM2 is the in-plane annual irradiation at the optimum.
	AnnualYieldKWhM2 float64 `json:"annual_yield_kwh_m2"`
	AnnualTargetKWh  float64 `json:"annual_target_kwh"`
	Params           Params  `json:"params"`
}

type Result struct {
	Mode        string   `json:"mode"`
	Params      Params   `json:"params"`
	Array       Array    `json:"array"`
	Battery     *Battery `json:"battery,omitempty"`
	ControllerA float64  `json:"controller_a,omitempty"`
	InverterW   float64  `json:"inverter_w"`
	Cable       Cable    `json:"cable"`
}

// RecommendVoltage picks the off-grid bus voltage for a daily load so that
// controller and cable currents stay moderate.
func RecommendVoltage(dailyWh float64) float64 {
	switch {
	case dailyWh <= 1500:
		return 12
	case dailyWh <= 5000:
		return 24
	default:
		return 48
	}
}

func Calculate(in Input) (Result, error) {
	if in.Params.SystemVoltage <= 0 && in.Mode != ModeGridTied {
		in.Params.SystemVoltage = RecommendVoltage(in.DailyWh)
	}
	p := in.Params.WithDefaults()
	res := Result{Mode: in.Mode, Params: p}

	switch in.Mode {
	case ModeOffGrid, "":
		res.Mode = ModeOffGrid
		a, err := OffGridArray(in.DailyWh, in.MinPSH, p)
		if err != nil {
			return Result{}, err
		}
		b, err := BatteryBank(in.DailyWh, p)
		if err != nil {
			return Result{}, err
		}
		res.Array = a
		res.Battery = &b
		res.ControllerA = ControllerCurrent(a, p)
		res.InverterW = InverterPower(in.ACPeakW)
	case ModeGridTied:
		target := in.AnnualTargetKWh
		if target <= 0 {
			target = in.DailyWh * 365 / 1000
		}
		a, err := GridTiedArray(target, in.AnnualYieldKWhM2, p)
		if err != nil {
			return Result{}, err
		}
		res.Array = a
		res.InverterW = InverterPower(a.InstalledWp)
	default:
		return Result{}, fmt.Errorf("%w: mode %q", ErrInvalidInput, in.Mode)
	}

	load := res.InverterW / safetyFactor
	if load <= 0 {
		// DC-only loads: size the run for the array output
		load = res.Array.InstalledWp
	}
	c, err := CableSection(load, p)
	if err != nil {
		return Result{}, err
	}
	res.Cable = c
	return res, nil
}
