package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MarcoEnzoS/14608und1Nacht/internal/domain"
)

// UpdateProfile handles PATCH /profiles/{person}. Only the legs and fields
// present in the body change; the merged profile is returned.
func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	profile, err := s.planner.UpdateProfile(currentUser(r), chi.URLParam(r, "person"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
