package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestUserIDFromContext returns 0 for contexts without an identity.
func TestUserIDFromContext(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != 0 {
		t.Errorf("anonymous context = %d, want 0", got)
	}
	ctx := context.WithValue(context.Background(), userIDKey, 42)
	if got := UserIDFromContext(ctx); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

// TestMustUserID writes 401 for anonymous requests and passes through
// resolved ones.
func TestMustUserID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if _, ok := mustUserID(rec, req); ok {
		t.Fatal("mustUserID accepted an anonymous request")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = withIdentity(httptest.NewRequest(http.MethodPost, "/", nil), 9, UserInfo{Login: "x"})
	uid, ok := mustUserID(rec, req)
	if !ok || uid != 9 {
		t.Errorf("mustUserID = (%d, %v), want (9, true)", uid, ok)
	}
}

// TestCORSPreflight answers OPTIONS directly with 204 and the allow headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight reached the inner handler")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/routines", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}

// TestStatusWriterCapturesCode records the status written by the handler.
func TestStatusWriterCapturesCode(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	sw.WriteHeader(http.StatusConflict)
	if sw.status != http.StatusConflict {
		t.Errorf("captured %d, want 409", sw.status)
	}
}
