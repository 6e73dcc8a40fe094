package handler

import (
	"net/http"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/tripstore"
)

// StateResponse is the body of GET /state: the user's mirror plus its
// freshness.
type StateResponse struct {
	tripstore.Snapshot
	Status tripstore.Status `json:"status"`
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, currentUser(r))
}

// RefreshState handles POST /state/refresh. A failed reload is not an HTTP
// error: the previous data comes back marked stale.
func (s *Server) RefreshState(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.planner.Refresh(r.Context(), user); err != nil {
		s.log.InfoContext(r.Context(), "manual refresh failed", "user", user, "error", err)
	}
	s.writeState(w, r, user)
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, user string) {
	snap, err := s.planner.Snapshot(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.planner.Status(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Snapshot: snap, Status: status})
}

// GetCosts handles GET /costs.
func (s *Server) GetCosts(w http.ResponseWriter, r *http.Request) {
	sum, err := s.planner.Costs(currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
