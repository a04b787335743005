package server

import (
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Bio                 *string `json:"bio"`
		Units               *string `json:"units"`
		OnboardingCompleted *bool   `json:"onboarding_completed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.db.UpdateProfile(r.Context(), uid, req.Bio, req.Units, req.OnboardingCompleted); err != nil {
		writeError(w, err)
		return
	}
	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
