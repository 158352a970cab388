package design

import (
	"encoding/json"
	"errors"
	"net/http"

	"Helio/internal/calc/consumption"
	"Helio/internal/calc/sizing"
	"Helio/internal/calc/tilt"
	"Helio/internal/log"
)

type Handler struct {
	Optimizer Optimizer
}

// IsBadInput reports whether err came from the caller's data.
func IsBadInput(err error) bool {
	return errors.Is(err, tilt.ErrInvalidInput) ||
		errors.Is(err, sizing.ErrInvalidInput) ||
		errors.Is(err, consumption.ErrInvalidDevice)
}

// Run decodes a design request and writes any failure to w. ok is false
// when a response has already been written.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) (res Result, ok bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return Result{}, false
	}
	res, err := Design(r.Context(), h.Optimizer, input)
	if err != nil {
		if IsBadInput(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return Result{}, false
		}
		log.Errorw("design failed", "error", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return Result{}, false
	}
	return res, true
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Run(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
