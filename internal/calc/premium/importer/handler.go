// Package importer runs the tilt search on monthly irradiation entered in a
// spreadsheet instead of fetched from the archive.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Helio/internal/calc/tilt"
	"Helio/internal/irradiance"
	"Helio/internal/log"

	"github.com/xuri/excelize/v2"
)

var ErrBadSheet = errors.New("importer: bad sheet")

const maxUpload = 4 << 20

type Handler struct {
	Options tilt.Options
}

// ParseMonthly reads month/value rows from the first sheet. The first row is a
// header. Month cells hold 1..12 or an English month name; values are daily
// horizontal irradiation, in MJ/m² when megajoules is set.
func ParseMonthly(r io.Reader, megajoules bool) (map[time.Month]float64, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSheet, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: empty sheet", ErrBadSheet)
	}

	out := make(map[time.Month]float64, 12)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			continue
		}
		m, err := parseMonth(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadSheet, i+1, err)
		}
		v, err := toFloat(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadSheet, i+1, err)
		}
		if megajoules {
			v *= irradiance.MJToKWh
		}
		out[m] = v
	}
	return out, nil
}

func parseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d", n)
		}
		return time.Month(n), nil
	}
	if len(s) >= 3 {
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), strings.ToLower(s)) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("month %q", s)
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func formFloat(r *http.Request, key string) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, fmt.Errorf("%s required", key)
	}
	return toFloat(v)
}

func (h *Handler) Irradiance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var in tilt.Input
	if in.Latitude, err = formFloat(r, "latitude"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.Longitude, err = formFloat(r, "longitude"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if d := r.FormValue("day"); d != "" {
		if in.Day, err = strconv.Atoi(d); err != nil {
			http.Error(w, "Invalid day", http.StatusBadRequest)
			return
		}
	}

	monthly, err := ParseMonthly(file, strings.EqualFold(r.FormValue("unit"), "MJ"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := tilt.New(irradiance.Static{Monthly: monthly}, h.Options).Optimize(r.Context(), in)
	if err != nil {
		if errors.Is(err, tilt.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorw("imported irradiance optimization failed", "error", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
