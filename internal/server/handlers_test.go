package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/go-chi/chi/v5"
)

func testServer() *Server {
	return New(nil, slog.New(slog.NewTextHandler(testWriter{}, nil)))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

// withIdentity attaches a resolved user to the request context, the same way
// the identity middleware does.
func withIdentity(r *http.Request, uid int, info UserInfo) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, uid)
	ctx = context.WithValue(ctx, userInfoKey, info)
	return r.WithContext(ctx)
}

// TestWriteErrorMapping verifies the error taxonomy maps to the intended
// HTTP statuses.
func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrInvalidState, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("cannot pause: %w", models.ErrInvalidState), http.StatusConflict},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		if rec.Code != tc.want {
			t.Errorf("writeError(%v) = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

// TestHandleMe returns the resolved identity, or 401 when none was attached.
func TestHandleMe(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = withIdentity(req, 7, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	rec := httptest.NewRecorder()
	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if info.Login != "alice@example.com" || info.DisplayName != "Alice" {
		t.Errorf("unexpected identity: %+v", info)
	}

	rec = httptest.NewRecorder()
	s.handleMe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous /me = %d, want 401", rec.Code)
	}
}

// TestMutationsRequireIdentity checks that write handlers reject anonymous
// requests before touching storage.
func TestMutationsRequireIdentity(t *testing.T) {
	s := testServer()
	handlers := map[string]http.HandlerFunc{
		"create routine": s.handleCreateRoutine,
		"start workout":  s.handleStartWorkout,
		"list friends":   s.handleListFriends,
		"active workout": s.handleActiveWorkout,
	}
	for name, h := range handlers {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s anonymous = %d, want 401", name, rec.Code)
		}
	}
}

// TestURLUUIDRejectsGarbage returns 400 on malformed UUID path parameters.
func TestURLUUIDRejectsGarbage(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/workouts/not-a-uuid", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	if _, ok := urlUUID(rec, req, "id"); ok {
		t.Fatal("urlUUID accepted a malformed UUID")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestQueryLimit falls back to the default for absent, zero, negative, and
// non-numeric values.
func TestQueryLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 25},
		{"limit=10", 10},
		{"limit=0", 25},
		{"limit=-3", 25},
		{"limit=abc", 25},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		if got := queryLimit(req, 25); got != tc.want {
			t.Errorf("queryLimit(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}

// TestDecodeBodyRejectsInvalidJSON writes 400 without calling the handler
// body.
func TestDecodeBodyRejectsInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	var v struct{}
	if decodeBody(rec, req, &v) {
		t.Fatal("decodeBody accepted an empty body")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestDecodeOptionalBodyEmpty leaves the target untouched on an empty body.
func TestDecodeOptionalBodyEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	var v struct {
		Notes *string `json:"notes"`
	}
	if !decodeOptionalBody(rec, req, &v) {
		t.Fatal("decodeOptionalBody rejected an empty body")
	}
	if v.Notes != nil {
		t.Errorf("notes = %q, want nil", *v.Notes)
	}
}

// TestDecodeOptionalBodyChunked decodes a body whose length is unknown up
// front, as with Transfer-Encoding: chunked.
func TestDecodeOptionalBodyChunked(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"notes":"great session"}`))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	var v struct {
		Notes *string `json:"notes"`
	}
	if !decodeOptionalBody(rec, req, &v) {
		t.Fatal("decodeOptionalBody rejected a chunked body")
	}
	if v.Notes == nil || *v.Notes != "great session" {
		t.Errorf("notes = %v, want %q", v.Notes, "great session")
	}
}

// TestDecodeOptionalBodyInvalidJSON still rejects malformed input.
func TestDecodeOptionalBodyInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notes":`))
	rec := httptest.NewRecorder()
	var v struct{}
	if decodeOptionalBody(rec, req, &v) {
		t.Fatal("decodeOptionalBody accepted truncated JSON")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
