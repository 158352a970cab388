package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	"Helio/internal/calc/tilt"
	"Helio/internal/log"
)

type Handler struct {
	Optimizer *tilt.Optimizer
}

func (h *Handler) Tilt(w http.ResponseWriter, r *http.Request) {
	var input TiltBatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateTilt(r.Context(), h.Optimizer, input)
	if err != nil {
		if errors.Is(err, ErrBatch) || errors.Is(err, tilt.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorw("batch optimization failed", "error", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
