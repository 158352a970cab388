package report

import (
	"bytes"
	"net/http"
	"time"

	"Helio/internal/calc/design"
	"Helio/internal/log"
)

type Handler struct {
	Design *design.Handler
	Now    func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Design.Run(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, res, h.now()); err != nil {
		log.Errorw("pdf render failed", "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"pv-design.pdf\"")
	w.Write(buf.Bytes())
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Design.Run(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, res); err != nil {
		log.Errorw("xlsx export failed", "error", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"pv-design.xlsx\"")
	w.Write(buf.Bytes())
}
