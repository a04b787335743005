package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/go-chi/chi/v5"
)

type routinePayload struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Exercises   []models.RoutineExercise `json:"exercises"`
	Visibility  *models.Visibility       `json:"visibility"`
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req routinePayload
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Visibility != nil {
		if _, err := models.ParseVisibility(string(*req.Visibility)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	routine, err := s.db.CreateRoutine(r.Context(), uid, *req.Name, req.Description, req.Exercises, req.Visibility)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("routine created", "user_id", uid, "routine_id", routine.ID)
	writeJSON(w, http.StatusCreated, routine)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	routines, err := s.db.ListRoutines(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	routine, err := s.db.GetRoutine(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req routinePayload
	if !decodeBody(w, r, &req) {
		return
	}
	routine, err := s.db.UpdateRoutine(r.Context(), uid, id, req.Name, req.Description, req.Exercises, req.Visibility)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.DeleteRoutine(r.Context(), uid, id); err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("routine deleted", "user_id", uid, "routine_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRoutineHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	history, err := s.db.GetRoutineWithHistory(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	exerciseID := chi.URLParam(r, "exerciseId")
	history, err := s.db.GetExerciseHistory(r.Context(), UserIDFromContext(r.Context()), id, exerciseID, queryLimit(r, 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleExercisePRs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	prs, err := s.db.GetExercisePRs(r.Context(), uid, chi.URLParam(r, "exerciseId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prs)
}
