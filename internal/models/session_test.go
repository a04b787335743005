package models

import (
	"testing"
	"time"
)

// TestActiveDurationRunning verifies elapsed time accrues while active.
func TestActiveDurationRunning(t *testing.T) {
	start := time.Now()
	s := &WorkoutSession{Status: StatusActive, StartedAt: start}

	got := s.ActiveDuration(start.Add(10 * time.Minute))
	if got != 10*time.Minute {
		t.Errorf("ActiveDuration = %v, want %v", got, 10*time.Minute)
	}
}

// TestActiveDurationFrozenWhilePaused verifies the clock stops while paused:
// pause at 10 minutes elapsed, query 5 minutes later, still 10 minutes.
func TestActiveDurationFrozenWhilePaused(t *testing.T) {
	start := time.Now()
	pausedAt := start.Add(10 * time.Minute)
	s := &WorkoutSession{Status: StatusPaused, StartedAt: start, PausedAt: &pausedAt}

	got := s.ActiveDuration(pausedAt.Add(5 * time.Minute))
	if got != 10*time.Minute {
		t.Errorf("ActiveDuration while paused = %v, want %v", got, 10*time.Minute)
	}
}

// TestActiveDurationAfterResume verifies accumulated pause time is excluded:
// pause at 10 min, resume 5 min later, duration right after resume is ~10 min.
func TestActiveDurationAfterResume(t *testing.T) {
	start := time.Now()
	s := &WorkoutSession{
		Status:          StatusActive,
		StartedAt:       start,
		TotalPausedTime: 5 * time.Minute,
	}

	got := s.ActiveDuration(start.Add(15 * time.Minute))
	if got != 10*time.Minute {
		t.Errorf("ActiveDuration after resume = %v, want %v", got, 10*time.Minute)
	}
}

// TestActiveDurationNeverNegative verifies the floor at zero even when the
// accumulated pause time exceeds wall time (clock skew between devices).
func TestActiveDurationNeverNegative(t *testing.T) {
	start := time.Now()
	s := &WorkoutSession{
		Status:          StatusActive,
		StartedAt:       start,
		TotalPausedTime: time.Hour,
	}

	if got := s.ActiveDuration(start.Add(time.Minute)); got != 0 {
		t.Errorf("ActiveDuration = %v, want 0", got)
	}
}

// TestActiveDurationMonotonic verifies duration never decreases while active.
func TestActiveDurationMonotonic(t *testing.T) {
	start := time.Now()
	s := &WorkoutSession{Status: StatusActive, StartedAt: start, TotalPausedTime: 2 * time.Minute}

	prev := time.Duration(-1)
	for i := 0; i < 10; i++ {
		d := s.ActiveDuration(start.Add(time.Duration(i) * time.Minute))
		if d < prev {
			t.Fatalf("duration decreased at step %d: %v < %v", i, d, prev)
		}
		prev = d
	}
}

// TestStatusTransitions verifies the full transition table: active↔paused,
// either to a terminal state, nothing out of a terminal state.
func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		want     bool
	}{
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusActive, false},
		{StatusPaused, StatusActive, true},
		{StatusPaused, StatusCompleted, true},
		{StatusPaused, StatusCancelled, true},
		{StatusPaused, StatusPaused, false},
		{StatusCompleted, StatusActive, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("CanTransitionTo(%s → %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

// TestStatusTerminal verifies terminal detection.
func TestStatusTerminal(t *testing.T) {
	if StatusActive.Terminal() || StatusPaused.Terminal() {
		t.Error("active/paused reported terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed/cancelled not reported terminal")
	}
}
