package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ExerciseSummary is the per-exercise aggregate shown on a routine page.
// Best values are running maxima over the fetched window, not all-time PRs;
// bestWeight and bestReps may come from different sets.
type ExerciseSummary struct {
	Sets          []WorkoutSet `json:"sets"` // oldest first, for trend display
	LastPerformed *time.Time   `json:"last_performed,omitempty"`
	BestWeight    float64      `json:"best_weight"`
	BestReps      int          `json:"best_reps"`
}

// SummarizeExercise computes an ExerciseSummary from sets fetched most-recent
// first. The returned set list is reversed to chronological order.
func SummarizeExercise(sets []WorkoutSet) ExerciseSummary {
	summary := ExerciseSummary{Sets: make([]WorkoutSet, 0, len(sets))}
	for _, s := range sets {
		if s.Weight > summary.BestWeight {
			summary.BestWeight = s.Weight
		}
		if s.Reps > summary.BestReps {
			summary.BestReps = s.Reps
		}
		if summary.LastPerformed == nil || s.CompletedAt.After(*summary.LastPerformed) {
			t := s.CompletedAt
			summary.LastPerformed = &t
		}
	}
	for i := len(sets) - 1; i >= 0; i-- {
		summary.Sets = append(summary.Sets, sets[i])
	}
	return summary
}

// RoutineWithHistory is a routine plus per-exercise aggregates keyed by
// external exercise ID.
type RoutineWithHistory struct {
	Routine
	ExerciseHistory map[string]ExerciseSummary `json:"exercise_history"`
}

// PRRecord pairs a personal-record value with the set that achieved it.
type PRRecord struct {
	Value float64     `json:"value"`
	Set   *WorkoutSet `json:"set,omitempty"`
}

// ExercisePRs holds all-time personal records for one exercise. Max weight,
// max reps, and max volume are tracked independently.
type ExercisePRs struct {
	ExerciseID string   `json:"exercise_id"`
	MaxWeight  PRRecord `json:"max_weight"`
	MaxReps    PRRecord `json:"max_reps"`
	MaxVolume  PRRecord `json:"max_volume"`
	TotalSets  int      `json:"total_sets"`
}

// ComputePRs scans all of a user's sets for one exercise and returns the
// personal records. Returns nil when no sets exist.
func ComputePRs(exerciseID string, sets []WorkoutSet) *ExercisePRs {
	if len(sets) == 0 {
		return nil
	}
	prs := &ExercisePRs{ExerciseID: exerciseID, TotalSets: len(sets)}
	for i := range sets {
		s := &sets[i]
		if s.Weight > prs.MaxWeight.Value {
			prs.MaxWeight = PRRecord{Value: s.Weight, Set: s}
		}
		if float64(s.Reps) > prs.MaxReps.Value {
			prs.MaxReps = PRRecord{Value: float64(s.Reps), Set: s}
		}
		if v := s.Volume(); v > prs.MaxVolume.Value {
			prs.MaxVolume = PRRecord{Value: v, Set: s}
		}
	}
	return prs
}

// SessionSets is one session's contribution to an exercise history.
type SessionSets struct {
	Session *WorkoutSession `json:"session"`
	Sets    []WorkoutSet    `json:"sets"` // ascending by exercise set number
}

// ExerciseHistory groups an exercise's recent sets by the session they were
// logged in, most recent session first.
type ExerciseHistory struct {
	RoutineID  uuid.UUID     `json:"routine_id"`
	ExerciseID string        `json:"exercise_id"`
	Sessions   []SessionSets `json:"sessions"`
	TotalSets  int           `json:"total_sets"`
}

// GroupSetsBySession builds an ExerciseHistory from a window of sets and the
// sessions they belong to. Sessions are ordered by descending start time; sets
// within a session by ascending exercise set number.
func GroupSetsBySession(routineID uuid.UUID, exerciseID string, sets []WorkoutSet, sessions map[uuid.UUID]*WorkoutSession) ExerciseHistory {
	bySession := make(map[uuid.UUID][]WorkoutSet)
	var order []uuid.UUID
	for _, s := range sets {
		if _, ok := bySession[s.SessionID]; !ok {
			order = append(order, s.SessionID)
		}
		bySession[s.SessionID] = append(bySession[s.SessionID], s)
	}

	history := ExerciseHistory{RoutineID: routineID, ExerciseID: exerciseID, TotalSets: len(sets)}
	for _, id := range order {
		group := bySession[id]
		sort.Slice(group, func(i, j int) bool {
			return group[i].ExerciseSetNumber < group[j].ExerciseSetNumber
		})
		history.Sessions = append(history.Sessions, SessionSets{Session: sessions[id], Sets: group})
	}
	sort.Slice(history.Sessions, func(i, j int) bool {
		si, sj := history.Sessions[i].Session, history.Sessions[j].Session
		var ti, tj time.Time
		if si != nil {
			ti = si.StartedAt
		}
		if sj != nil {
			tj = sj.StartedAt
		}
		return ti.After(tj)
	})
	return history
}
