package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

type rsvpRequest struct {
	People []string `json:"people"`
	Status string   `json:"status"`
}

// SetRSVP handles PUT /events/{id}/rsvps.
func (s *Server) SetRSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.planner.SetRSVP(currentUser(r), chi.URLParam(r, "id"), req.People, domain.RSVPStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
