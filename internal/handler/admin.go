package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/service"
)

type unlockRequest struct {
	PIN string `json:"pin"`
}

// UnlockAdmin handles POST /admin/unlock. On success the cookie session is
// marked unlocked until logout.
func (s *Server) UnlockAdmin(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.planner.UnlockAdmin(currentUser(r), req.PIN); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := s.session(r)
	sess.Values[adminKey] = true
	if err := sess.Save(r, w); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateEvent handles POST /events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft service.EventDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	s.saveEvent(w, r, draft, http.StatusCreated)
}

// UpdateEvent handles PUT /events/{id}. The id in the path wins over one in
// the body.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var draft service.EventDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	draft.ID = chi.URLParam(r, "id")
	s.saveEvent(w, r, draft, http.StatusOK)
}

func (s *Server) saveEvent(w http.ResponseWriter, r *http.Request, draft service.EventDraft, status int) {
	unlocked := adminUnlocked(s.session(r))
	event, err := s.planner.SaveEvent(r.Context(), currentUser(r), unlocked, draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, event)
}

// DeleteEvent handles DELETE /events/{id}.
func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	unlocked := adminUnlocked(s.session(r))
	if err := s.planner.DeleteEvent(r.Context(), currentUser(r), unlocked, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
