// Package sites stores a user's candidate coordinates and runs the tilt
// search on them.
package sites

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"Helio/internal/auth"
	"Helio/internal/calc/design"
	"Helio/internal/calc/tilt"
	"Helio/internal/log"
	"Helio/internal/repo"

	"github.com/gorilla/mux"
)

type Handler struct {
	Repo      repo.Repository
	Optimizer design.Optimizer
}

type CreateSiteRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Day       int     `json:"day"`
}

func (req CreateSiteRequest) input() tilt.Input {
	return tilt.Input{Latitude: req.Latitude, Longitude: req.Longitude, Day: req.Day}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}

func siteID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.Repo.ListSites(r.Context(), userID)
	if err != nil {
		log.Errorw("list sites failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Name required", http.StatusBadRequest)
		return
	}
	if req.Day == 0 {
		req.Day = 15
	}
	if err := req.input().Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.Repo.CreateSite(r.Context(), repo.Site{
		UserID:    userID,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Day:       req.Day,
	})
	if err != nil {
		log.Errorw("create site failed", "user_id", userID, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (repo.Site, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return repo.Site{}, false
	}
	id, ok := siteID(w, r)
	if !ok {
		return repo.Site{}, false
	}
	s, err := h.Repo.GetSite(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Site not found", http.StatusNotFound)
		return repo.Site{}, false
	}
	if err != nil {
		log.Errorw("get site failed", "user_id", userID, "site_id", id, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return repo.Site{}, false
	}
	return s, true
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.load(w, r); ok {
		writeJSON(w, http.StatusOK, s)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := siteID(w, r)
	if !ok {
		return
	}
	err := h.Repo.DeleteSite(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Site not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorw("delete site failed", "user_id", userID, "site_id", id, "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tilt runs the optimizer on a saved site.
func (h *Handler) Tilt(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	res, err := h.Optimizer.Optimize(r.Context(), tilt.Input{Latitude: s.Latitude, Longitude: s.Longitude, Day: s.Day})
	if err != nil {
		log.Errorw("site optimization failed", "site_id", s.ID, "error", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
