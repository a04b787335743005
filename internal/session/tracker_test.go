package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// fakeServer is a minimal in-memory workout API for tracker tests.
type fakeServer struct {
	mu      sync.Mutex
	session *models.SessionDetail
	nextSet int
	perEx   map[string]int

	rejectSets bool
	heartbeats int
}

func newFakeServer() *fakeServer {
	return &fakeServer{perEx: map[string]int{}}
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/workouts", f.startWorkout)
	mux.HandleFunc("GET /api/v1/workouts/active", f.getActive)
	mux.HandleFunc("POST /api/v1/workouts/{id}/sets", f.addSet)
	mux.HandleFunc("POST /api/v1/workouts/{id}/pause", f.transition(models.StatusPaused))
	mux.HandleFunc("POST /api/v1/workouts/{id}/resume", f.transition(models.StatusActive))
	mux.HandleFunc("POST /api/v1/workouts/{id}/complete", f.transition(models.StatusCompleted))
	mux.HandleFunc("POST /api/v1/workouts/{id}/cancel", f.transition(models.StatusCancelled))
	mux.HandleFunc("POST /api/v1/workouts/{id}/heartbeat", f.heartbeat)
	mux.HandleFunc("DELETE /api/v1/sets/{id}", f.deleteSet)
	return mux
}

func (f *fakeServer) startWorkout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var req struct {
		RoutineID uuid.UUID `json:"routine_id"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	f.session = &models.SessionDetail{
		WorkoutSession: models.WorkoutSession{
			ID:        uuid.New(),
			RoutineID: req.RoutineID,
			Status:    models.StatusActive,
			StartedAt: time.Now(),
		},
		Sets: []models.WorkoutSet{},
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f.session)
}

func (f *fakeServer) getActive(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil || f.session.Status.Terminal() {
		json.NewEncoder(w).Encode(nil)
		return
	}
	json.NewEncoder(w).Encode(f.session)
}

func (f *fakeServer) addSet(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectSets {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "workout is not active"})
		return
	}
	var input models.SetInput
	json.NewDecoder(r.Body).Decode(&input)
	f.nextSet++
	f.perEx[input.ExerciseID]++
	set := models.WorkoutSet{
		ID:                uuid.New(),
		SessionID:         f.session.ID,
		ExerciseID:        input.ExerciseID,
		SetNumber:         f.nextSet,
		ExerciseSetNumber: f.perEx[input.ExerciseID],
		Reps:              input.Reps,
		Weight:            input.Weight,
		WeightUnit:        input.WeightUnit,
		CompletedAt:       time.Now(),
	}
	f.session.Sets = append(f.session.Sets, set)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(set)
}

func (f *fakeServer) deleteSet(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/sets/")
	for i, s := range f.session.Sets {
		if s.ID.String() == id {
			f.session.Sets = append(f.session.Sets[:i], f.session.Sets[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "set not found"})
}

func (f *fakeServer) transition(to models.SessionStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		now := time.Now()
		switch to {
		case models.StatusPaused:
			f.session.PausedAt = &now
		case models.StatusActive:
			if f.session.PausedAt != nil {
				f.session.TotalPausedTime += now.Sub(*f.session.PausedAt)
				f.session.PausedAt = nil
			}
		}
		f.session.Status = to
		json.NewEncoder(w).Encode(f.session)
	}
}

func (f *fakeServer) heartbeat(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.heartbeats++
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func newTestTracker(t *testing.T, f *fakeServer) *Tracker {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	log := slog.New(slog.NewTextHandler(discard{}, nil))
	tr := NewTracker(NewClient(srv.URL), nil, log)
	t.Cleanup(tr.Close)
	return tr
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// TestTrackerAddSetConfirms verifies a logged set ends up saved with the
// server's identity.
func TestTrackerAddSetConfirms(t *testing.T) {
	f := newFakeServer()
	tr := newTestTracker(t, f)
	ctx := context.Background()

	if err := tr.Start(ctx, uuid.New(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := tr.AddSet(ctx, benchInput("bench")); err != nil {
		t.Fatalf("AddSet: %v", err)
	}

	sets := tr.Sets()
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}
	if !sets[0].SavedToDB || sets[0].ServerID == nil {
		t.Errorf("set not confirmed: %+v", sets[0])
	}
}

// TestTrackerAddSetRollsBack removes the optimistic set when the server
// rejects it.
func TestTrackerAddSetRollsBack(t *testing.T) {
	f := newFakeServer()
	tr := newTestTracker(t, f)
	ctx := context.Background()

	if err := tr.Start(ctx, uuid.New(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.mu.Lock()
	f.rejectSets = true
	f.mu.Unlock()

	_, err := tr.AddSet(ctx, benchInput("bench"))
	if err == nil {
		t.Fatal("expected an error from the rejected set")
	}
	if got := len(tr.Sets()); got != 0 {
		t.Errorf("mirror kept %d sets after rollback, want 0", got)
	}
}

// TestTrackerRemoveSetRollsBack restores an optimistically removed set when
// the server refuses the delete.
func TestTrackerRemoveSetRollsBack(t *testing.T) {
	f := newFakeServer()
	tr := newTestTracker(t, f)
	ctx := context.Background()

	if err := tr.Start(ctx, uuid.New(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	localID, err := tr.AddSet(ctx, benchInput("bench"))
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}

	// Make the server forget the set so the delete 404s.
	f.mu.Lock()
	f.session.Sets = nil
	f.mu.Unlock()

	if err := tr.RemoveSet(ctx, localID); err == nil {
		t.Fatal("expected the delete to fail")
	}
	if got := len(tr.Sets()); got != 1 {
		t.Errorf("mirror has %d sets after rollback, want 1", got)
	}
}

// TestTrackerPauseResume reflects the server's pause bookkeeping locally.
func TestTrackerPauseResume(t *testing.T) {
	f := newFakeServer()
	tr := newTestTracker(t, f)
	ctx := context.Background()

	if err := tr.Start(ctx, uuid.New(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := tr.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := tr.Status(); got != models.StatusPaused {
		t.Errorf("status = %s, want paused", got)
	}
	if err := tr.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := tr.Status(); got != models.StatusActive {
		t.Errorf("status = %s, want active", got)
	}
}

// TestTrackerCompleteClearsState drops the mirror once the workout is done.
func TestTrackerCompleteClearsState(t *testing.T) {
	f := newFakeServer()
	tr := newTestTracker(t, f)
	ctx := context.Background()

	if err := tr.Start(ctx, uuid.New(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	detail, err := tr.Complete(ctx, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if detail.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", detail.Status)
	}
	if tr.Status() != "" {
		t.Error("tracker still holds a session after completion")
	}
	if _, err := tr.AddSet(ctx, benchInput("bench")); err == nil {
		t.Error("AddSet succeeded with no workout in progress")
	}
}

// TestTrackerRestore picks an in-progress session back up from the server.
func TestTrackerRestore(t *testing.T) {
	f := newFakeServer()
	tr := newTestTracker(t, f)
	ctx := context.Background()

	if err := tr.Start(ctx, uuid.New(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := tr.AddSet(ctx, benchInput("bench")); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	tr.Close()

	fresh := newTestTracker(t, f)
	found, err := fresh.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !found {
		t.Fatal("Restore found no session")
	}
	if got := len(fresh.Sets()); got != 1 {
		t.Errorf("restored %d sets, want 1", got)
	}
}
