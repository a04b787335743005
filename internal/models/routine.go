package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoutineExercise is one exercise slot in a routine: which exercise, where it
// sits, and the default targets. Embedded in Routine, never stored standalone.
type RoutineExercise struct {
	ExerciseID   string  `json:"exercise_id"` // external exercise catalog ID
	Order        int     `json:"order"`
	TargetSets   int     `json:"target_sets"`
	TargetReps   int     `json:"target_reps"`
	IsUnilateral bool    `json:"is_unilateral,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// Routine is a reusable workout template owned by a single user.
type Routine struct {
	ID              uuid.UUID         `json:"id"`
	UserID          int               `json:"user_id"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	Exercises       []RoutineExercise `json:"exercises"`
	Visibility      Visibility        `json:"visibility"`
	TimesPerformed  int               `json:"times_performed"`
	LastPerformedAt *time.Time        `json:"last_performed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ValidateExercises checks the routine exercise list invariant: order values
// are unique and contiguous starting at 0, and targets are positive.
func ValidateExercises(exercises []RoutineExercise) error {
	seen := make(map[int]bool, len(exercises))
	for _, ex := range exercises {
		if ex.ExerciseID == "" {
			return fmt.Errorf("exercise at order %d has empty exercise_id", ex.Order)
		}
		if ex.Order < 0 || ex.Order >= len(exercises) {
			return fmt.Errorf("exercise %s order %d out of range [0,%d)", ex.ExerciseID, ex.Order, len(exercises))
		}
		if seen[ex.Order] {
			return fmt.Errorf("duplicate exercise order %d", ex.Order)
		}
		seen[ex.Order] = true
		if ex.TargetSets <= 0 {
			return fmt.Errorf("exercise %s target_sets must be positive", ex.ExerciseID)
		}
		if ex.TargetReps <= 0 {
			return fmt.Errorf("exercise %s target_reps must be positive", ex.ExerciseID)
		}
	}
	return nil
}

// ExerciseByID returns the routine exercise with the given external ID, or nil.
func (r *Routine) ExerciseByID(exerciseID string) *RoutineExercise {
	for i := range r.Exercises {
		if r.Exercises[i].ExerciseID == exerciseID {
			return &r.Exercises[i]
		}
	}
	return nil
}
