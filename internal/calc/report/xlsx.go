package report

import (
	"io"

	"Helio/internal/calc/design"

	"github.com/xuri/excelize/v2"
)

const monthlySheet = "Monthly"

var monthlyHeader = []any{
	"Month", "Day of year", "Days", "H0 kWh/m2", "H kWh/m2", "Kt",
	"Hd kWh/m2", "Hb kWh/m2", "Rb", "Hi kWh/m2",
}

// WriteXLSX exports the monthly table and a summary sheet.
func WriteXLSX(w io.Writer, res design.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", monthlySheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(monthlySheet, "A1", &monthlyHeader); err != nil {
		return err
	}
	for i, m := range res.Tilt.Monthly {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			m.Name, m.DayOfYear, m.Days, m.Astro.Extraterrestrial, m.Horizontal.Global,
			m.Horizontal.ClearnessIndex, m.Horizontal.Diffuse, m.Horizontal.Direct,
			m.Tilted.BeamFactor, m.Tilted.Global,
		}
		if err := f.SetSheetRow(monthlySheet, cell, &values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return err
	}
	summary := [][]any{
		{"Project", res.Project},
		{"Status", res.Status},
		{"Latitude", res.Site.Latitude},
		{"Longitude", res.Site.Longitude},
		{"Valid months", res.Tilt.ValidMonths},
		{"Daily consumption Wh", res.Consumption.EnergyDailyWh},
	}
	if res.Tilt.Found() {
		summary = append(summary,
			[]any{"Optimal tilt deg", *res.Tilt.OptimalTiltDeg},
			[]any{"Annual yield kWh/m2", res.Tilt.AnnualYieldMWh * 1000},
			[]any{"Min peak sun hours", res.Tilt.MinMonthlyIrradiance},
		)
	}
	if s := res.Sizing; s != nil {
		summary = append(summary,
			[]any{"Installed Wp", s.Array.InstalledWp},
			[]any{"Panels", s.Array.Panels},
			[]any{"Inverter W", s.InverterW},
			[]any{"Cable mm2", s.Cable.SectionMM2},
		)
		if s.Battery != nil {
			summary = append(summary, []any{"Battery Ah", s.Battery.CapacityAh})
		}
	}
	for i, r := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Summary", cell, &r); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
