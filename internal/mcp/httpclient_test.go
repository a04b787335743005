package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// TestHTTPClientListRoutines decodes a routine list from the REST API.
func TestHTTPClientListRoutines(t *testing.T) {
	routines := []models.Routine{
		{ID: uuid.New(), Name: "Push Day", Visibility: models.VisibilityPrivate},
		{ID: uuid.New(), Name: "Pull Day", Visibility: models.VisibilityPublic},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/routines" {
			t.Errorf("path = %s, want /api/v1/routines", r.URL.Path)
		}
		json.NewEncoder(w).Encode(routines)
	}))
	defer srv.Close()

	got, err := NewHTTPClient(srv.URL).ListRoutines(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRoutines: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Push Day" {
		t.Errorf("unexpected routines: %+v", got)
	}
}

// TestHTTPClientActiveSessionNull maps a JSON null response to a nil detail.
func TestHTTPClientActiveSessionNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	detail, err := NewHTTPClient(srv.URL).GetActiveSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetActiveSession: %v", err)
	}
	if detail != nil {
		t.Errorf("detail = %+v, want nil", detail)
	}
}

// TestHTTPClientSessionHistoryParams forwards status and limit as query
// parameters.
func TestHTTPClientSessionHistoryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "completed" {
			t.Errorf("status = %q, want completed", q.Get("status"))
		}
		if q.Get("limit") != "25" {
			t.Errorf("limit = %q, want 25", q.Get("limit"))
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	status := models.StatusCompleted
	if _, err := NewHTTPClient(srv.URL).SessionHistory(context.Background(), 1, &status, 25); err != nil {
		t.Fatalf("SessionHistory: %v", err)
	}
}

// TestHTTPClientErrorStatus surfaces non-200 responses as errors.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"routine not found"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).GetRoutineWithHistory(context.Background(), 1, uuid.New())
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}
