package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSet is one logged set. Identity fields (session, exercise, numbering)
// are fixed at insertion; content fields may be edited afterwards.
type WorkoutSet struct {
	ID                uuid.UUID  `json:"id"`
	UserID            int        `json:"user_id"`
	RoutineID         uuid.UUID  `json:"routine_id"`
	SessionID         uuid.UUID  `json:"session_id"`
	ExerciseID        string     `json:"exercise_id"`
	SetNumber         int        `json:"set_number"`          // global order within the session, gaps allowed
	ExerciseSetNumber int        `json:"exercise_set_number"` // per-exercise order, kept contiguous
	Reps              int        `json:"reps"`
	Weight            float64    `json:"weight"`
	WeightUnit        WeightUnit `json:"weight_unit"`
	Side              *Side      `json:"side,omitempty"`
	Label             *SetLabel  `json:"label,omitempty"`
	Note              *string    `json:"note,omitempty"`
	RPE               *float64   `json:"rpe,omitempty"`
	CompletedAt       time.Time  `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Volume is the set's weight × reps.
func (s *WorkoutSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// SetRef is the minimal view of a logged set that ordering depends on.
type SetRef struct {
	SetNumber  int
	ExerciseID string
}

// NextSetNumbers computes the ordering counters for a set being appended to a
// session's ledger. The global counter extends the highest number ever
// assigned, so a deleted set's number is never handed out again; the
// per-exercise counter is a plain count, which stays dense because deletions
// resequence the surviving sets of that exercise.
func NextSetNumbers(ledger []SetRef, exerciseID string) (setNumber, exerciseSetNumber int) {
	maxGlobal, forExercise := 0, 0
	for _, s := range ledger {
		if s.SetNumber > maxGlobal {
			maxGlobal = s.SetNumber
		}
		if s.ExerciseID == exerciseID {
			forExercise++
		}
	}
	return maxGlobal + 1, forExercise + 1
}

// SetInput carries the caller-supplied fields of a new set.
type SetInput struct {
	ExerciseID string     `json:"exercise_id"`
	Reps       int        `json:"reps"`
	Weight     float64    `json:"weight"`
	WeightUnit WeightUnit `json:"weight_unit"`
	Side       *Side      `json:"side,omitempty"`
	Label      *SetLabel  `json:"label,omitempty"`
	Note       *string    `json:"note,omitempty"`
	RPE        *float64   `json:"rpe,omitempty"`
}

// SetPatch is a partial update to a set's content fields. Nil means unchanged.
// Numbering, exercise, and session references are immutable after creation.
type SetPatch struct {
	Reps       *int        `json:"reps,omitempty"`
	Weight     *float64    `json:"weight,omitempty"`
	WeightUnit *WeightUnit `json:"weight_unit,omitempty"`
	Side       *Side       `json:"side,omitempty"`
	Label      *SetLabel   `json:"label,omitempty"`
	Note       *string     `json:"note,omitempty"`
	RPE        *float64    `json:"rpe,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SetPatch) Empty() bool {
	return p.Reps == nil && p.Weight == nil && p.WeightUnit == nil &&
		p.Side == nil && p.Label == nil && p.Note == nil && p.RPE == nil
}
