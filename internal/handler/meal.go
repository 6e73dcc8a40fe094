package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

type toggleMealRequest struct {
	Person string `json:"person"`
}

type toggleMealResponse struct {
	Enabled bool `json:"enabled"`
}

type setMealsRequest struct {
	People  []string `json:"people"`
	Enabled bool     `json:"enabled"`
}

// ToggleMeal handles POST /meals/{day}/{slot}/toggle and returns the new flag.
func (s *Server) ToggleMeal(w http.ResponseWriter, r *http.Request) {
	var req toggleMealRequest
	if !decodeBody(w, r, &req) {
		return
	}
	day, slot := chi.URLParam(r, "day"), domain.MealSlot(chi.URLParam(r, "slot"))
	enabled, err := s.planner.ToggleMeal(currentUser(r), day, slot, req.Person)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleMealResponse{Enabled: enabled})
}

// SetMeals handles PUT /meals/{day}/{slot}.
func (s *Server) SetMeals(w http.ResponseWriter, r *http.Request) {
	var req setMealsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	day, slot := chi.URLParam(r, "day"), domain.MealSlot(chi.URLParam(r, "slot"))
	if err := s.planner.SetMeals(currentUser(r), day, slot, req.People, req.Enabled); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
