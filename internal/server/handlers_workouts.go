package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		RoutineID  uuid.UUID          `json:"routine_id"`
		Visibility *models.Visibility `json:"visibility"`
		Name       *string            `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RoutineID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "routine_id is required"})
		return
	}
	if req.Visibility != nil {
		if _, err := models.ParseVisibility(string(*req.Visibility)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	detail, err := s.db.StartSession(r.Context(), uid, req.RoutineID, req.Visibility, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("workout started", "user_id", uid, "session_id", detail.ID, "routine_id", req.RoutineID)
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleActiveWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	detail, err := s.db.GetActiveSession(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	// detail is nil when no workout is in progress; the client gets JSON null.
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleRecentWorkouts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	sessions, err := s.db.RecentSessions(r.Context(), uid, queryLimit(r, 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleWorkoutHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var status *models.SessionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseSessionStatus(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		status = &parsed
	}
	sessions, err := s.db.SessionHistory(r.Context(), uid, status, queryLimit(r, 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSpectatable(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.SpectatableSessions(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleFriendsActive(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	sessions, err := s.db.ActiveSessionsForFriends(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.db.GetSessionByID(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// lifecycleAction runs a status transition and returns the refreshed session.
func (s *Server) lifecycleAction(w http.ResponseWriter, r *http.Request,
	action string, fn func(userID int, sessionID uuid.UUID) error) {

	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := fn(uid, id); err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("workout "+action, "user_id", uid, "session_id", id)
	detail, err := s.db.GetSessionByID(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handlePauseWorkout(w http.ResponseWriter, r *http.Request) {
	s.lifecycleAction(w, r, "paused", func(uid int, id uuid.UUID) error {
		return s.db.PauseSession(r.Context(), uid, id)
	})
}

func (s *Server) handleResumeWorkout(w http.ResponseWriter, r *http.Request) {
	s.lifecycleAction(w, r, "resumed", func(uid int, id uuid.UUID) error {
		return s.db.ResumeSession(r.Context(), uid, id)
	})
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes *string `json:"notes"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	s.lifecycleAction(w, r, "completed", func(uid int, id uuid.UUID) error {
		return s.db.CompleteSession(r.Context(), uid, id, req.Notes)
	})
}

func (s *Server) handleCancelWorkout(w http.ResponseWriter, r *http.Request) {
	s.lifecycleAction(w, r, "cancelled", func(uid int, id uuid.UUID) error {
		return s.db.CancelSession(r.Context(), uid, id)
	})
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.Heartbeat(r.Context(), uid, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var input models.SetInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.ExerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id is required"})
		return
	}
	if input.Reps <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be positive"})
		return
	}
	set, err := s.db.AddSet(r.Context(), uid, id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	set, err := s.db.GetSetByID(r.Context(), uid, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var patch models.SetPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	set, err := s.db.UpdateSet(r.Context(), uid, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.DeleteSet(r.Context(), uid, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
