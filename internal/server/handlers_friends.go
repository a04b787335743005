package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/models"
)

func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Login string `json:"login"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Login == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "login is required"})
		return
	}
	recipientID, err := s.db.LookupUserByLogin(r.Context(), req.Login)
	if err != nil {
		writeError(w, err)
		return
	}
	if recipientID == uid {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot befriend yourself"})
		return
	}
	friend, err := s.db.SendFriendRequest(r.Context(), uid, recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("friend request sent", "requester_id", uid, "recipient_id", recipientID)
	writeJSON(w, http.StatusCreated, friend)
}

func (s *Server) handleRespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := models.ParseFriendStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	friend, err := s.db.RespondFriendRequest(r.Context(), uid, id, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friend)
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var status *models.FriendStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseFriendStatus(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		status = &parsed
	}
	friends, err := s.db.ListFriends(r.Context(), uid, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}
