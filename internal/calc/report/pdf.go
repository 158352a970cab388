// Package report renders a PV design as a PDF summary or an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"Helio/internal/calc/design"

	"github.com/phpdave11/gofpdf"
)

const defaultTitle = "PV System Design"

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func row(pdf *gofpdf.Fpdf, widths []float64, cells ...string) {
	for i, c := range cells {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func line(pdf *gofpdf.Fpdf, format string, args ...any) {
	pdf.Cell(0, 6, fmt.Sprintf(format, args...))
	pdf.Ln(6)
}

// WritePDF renders res to w. now stamps the document date.
func WritePDF(w io.Writer, res design.Result, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, defaultTitle)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Project: %s", tr(orDash(res.Project)))
	line(pdf, "Date: %s", now.Format("2006-01-02"))
	line(pdf, "Site: %.4f, %.4f (day %d)", res.Site.Latitude, res.Site.Longitude, res.Site.Day)
	line(pdf, "Daily consumption: %.0f Wh (AC %.0f, DC %.0f)",
		res.Consumption.EnergyDailyWh, res.Consumption.EnergyACWh, res.Consumption.EnergyDCWh)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Orientation")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	if !res.Tilt.Found() {
		line(pdf, "Irradiance data covered %d months; no optimum could be determined.", res.Tilt.ValidMonths)
		line(pdf, "Enter monthly irradiation manually to complete the design.")
		return pdf.Output(w)
	}
	line(pdf, "Optimal tilt: %d deg, facing the equator", *res.Tilt.OptimalTiltDeg)
	line(pdf, "Annual in-plane irradiation: %.1f kWh/m2", res.Tilt.AnnualYieldMWh*1000)
	line(pdf, "Minimum peak sun hours: %.2f h", res.Tilt.MinMonthlyIrradiance)
	pdf.Ln(2)

	widths := []float64{34, 26, 26, 26, 26, 30}
	pdf.SetFont("Helvetica", "B", 10)
	row(pdf, widths, "Month", "H kWh/m2", "Kt", "Hd kWh/m2", "Rb", "Hi kWh/m2")
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range res.Tilt.Monthly {
		row(pdf, widths, m.Name,
			fmt.Sprintf("%.2f", m.Horizontal.Global),
			fmt.Sprintf("%.3f", m.Horizontal.ClearnessIndex),
			fmt.Sprintf("%.2f", m.Horizontal.Diffuse),
			fmt.Sprintf("%.3f", m.Tilted.BeamFactor),
			fmt.Sprintf("%.2f", m.Tilted.Global))
	}

	if s := res.Sizing; s != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, fmt.Sprintf("Sizing (%s)", s.Mode))
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		line(pdf, "Array: %d x %.0f Wp = %.0f Wp (%d strings of %d, required %.0f Wp)",
			s.Array.Panels, s.Params.PanelWp, s.Array.InstalledWp, s.Array.Strings, s.Array.SeriesPerString, s.Array.RequiredWp)
		if b := s.Battery; b != nil {
			line(pdf, "Battery: %.0f Ah at %.0f V, %d x %.0f Ah units (%dS%dP, %.1f kWh)",
				b.CapacityAh, s.Params.SystemVoltage, b.Units, s.Params.BatteryAh, b.Series, b.Parallel, b.StoredKWh)
			line(pdf, "Charge controller: %.1f A", s.ControllerA)
		}
		line(pdf, "Inverter: %.0f W", s.InverterW)
		line(pdf, "AC cable: %.1f mm2 over %.0f m (drop %.2f%%)",
			s.Cable.SectionMM2, s.Params.CableLengthM, s.Cable.VoltageDropPct)
	}
	return pdf.Output(w)
}
