package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func setAt(session uuid.UUID, exerciseSetNumber, reps int, weight float64, completed time.Time) WorkoutSet {
	return WorkoutSet{
		ID:                uuid.New(),
		SessionID:         session,
		ExerciseID:        "bench-press",
		ExerciseSetNumber: exerciseSetNumber,
		Reps:              reps,
		Weight:            weight,
		WeightUnit:        UnitKg,
		CompletedAt:       completed,
	}
}

// TestSummarizeExercise verifies best weight and best reps are independent
// maxima (they may come from different sets) and the set list is reversed to
// chronological order.
func TestSummarizeExercise(t *testing.T) {
	session := uuid.New()
	base := time.Now()
	// Most recent first, as fetched.
	sets := []WorkoutSet{
		setAt(session, 3, 5, 100, base),
		setAt(session, 2, 12, 60, base.Add(-time.Minute)),
		setAt(session, 1, 8, 80, base.Add(-2*time.Minute)),
	}

	summary := SummarizeExercise(sets)

	if summary.BestWeight != 100 {
		t.Errorf("BestWeight = %v, want 100", summary.BestWeight)
	}
	if summary.BestReps != 12 {
		t.Errorf("BestReps = %v, want 12", summary.BestReps)
	}
	if summary.LastPerformed == nil || !summary.LastPerformed.Equal(base) {
		t.Errorf("LastPerformed = %v, want %v", summary.LastPerformed, base)
	}
	if len(summary.Sets) != 3 {
		t.Fatalf("len(Sets) = %d, want 3", len(summary.Sets))
	}
	if !summary.Sets[0].CompletedAt.Before(summary.Sets[2].CompletedAt) {
		t.Error("sets not in chronological order")
	}
}

// TestSummarizeExerciseEmpty verifies the zero-window summary.
func TestSummarizeExerciseEmpty(t *testing.T) {
	summary := SummarizeExercise(nil)
	if summary.BestWeight != 0 || summary.BestReps != 0 || summary.LastPerformed != nil {
		t.Errorf("empty summary = %+v, want zeroes", summary)
	}
}

// TestComputePRs verifies max weight, max reps, and max volume are tracked
// independently with the set that achieved each.
func TestComputePRs(t *testing.T) {
	session := uuid.New()
	now := time.Now()
	heavy := setAt(session, 1, 3, 140, now)   // max weight, volume 420
	highRep := setAt(session, 2, 15, 60, now) // max reps, volume 900 → max volume
	middle := setAt(session, 3, 8, 100, now)  // volume 800

	prs := ComputePRs("bench-press", []WorkoutSet{heavy, highRep, middle})
	if prs == nil {
		t.Fatal("ComputePRs returned nil for non-empty sets")
	}
	if prs.MaxWeight.Value != 140 || prs.MaxWeight.Set.ID != heavy.ID {
		t.Errorf("MaxWeight = %v (set %v), want 140 from heavy set", prs.MaxWeight.Value, prs.MaxWeight.Set.ID)
	}
	if prs.MaxReps.Value != 15 || prs.MaxReps.Set.ID != highRep.ID {
		t.Errorf("MaxReps = %v, want 15 from high-rep set", prs.MaxReps.Value)
	}
	if prs.MaxVolume.Value != 900 || prs.MaxVolume.Set.ID != highRep.ID {
		t.Errorf("MaxVolume = %v, want 900 from high-rep set", prs.MaxVolume.Value)
	}
	if prs.TotalSets != 3 {
		t.Errorf("TotalSets = %d, want 3", prs.TotalSets)
	}
}

// TestComputePRsEmpty verifies nil is returned when the user has no sets.
func TestComputePRsEmpty(t *testing.T) {
	if prs := ComputePRs("bench-press", nil); prs != nil {
		t.Errorf("ComputePRs(empty) = %+v, want nil", prs)
	}
}

// TestGroupSetsBySession verifies grouping, session ordering (most recent
// first), and per-session set ordering (ascending exercise set number).
func TestGroupSetsBySession(t *testing.T) {
	routineID := uuid.New()
	older := uuid.New()
	newer := uuid.New()
	now := time.Now()
	sessions := map[uuid.UUID]*WorkoutSession{
		older: {ID: older, StartedAt: now.Add(-48 * time.Hour)},
		newer: {ID: newer, StartedAt: now.Add(-time.Hour)},
	}
	sets := []WorkoutSet{
		setAt(older, 2, 8, 80, now.Add(-48*time.Hour)),
		setAt(newer, 1, 8, 85, now.Add(-time.Hour)),
		setAt(older, 1, 8, 80, now.Add(-48*time.Hour)),
		setAt(newer, 2, 6, 90, now.Add(-time.Hour)),
	}

	history := GroupSetsBySession(routineID, "bench-press", sets, sessions)

	if history.TotalSets != 4 {
		t.Errorf("TotalSets = %d, want 4", history.TotalSets)
	}
	if len(history.Sessions) != 2 {
		t.Fatalf("len(Sessions) = %d, want 2", len(history.Sessions))
	}
	if history.Sessions[0].Session.ID != newer {
		t.Error("sessions not ordered most recent first")
	}
	for _, group := range history.Sessions {
		for i := 1; i < len(group.Sets); i++ {
			if group.Sets[i].ExerciseSetNumber < group.Sets[i-1].ExerciseSetNumber {
				t.Errorf("session %v sets not ascending by exercise set number", group.Session.ID)
			}
		}
	}
}
