package models

import (
	"time"

	"github.com/google/uuid"
)

// Friend is a directed friendship record. An accepted row in either direction
// is the sole evidence that two users are friends.
type Friend struct {
	ID          uuid.UUID    `json:"id"`
	RequesterID int          `json:"requester_id"`
	RecipientID int          `json:"recipient_id"`
	Status      FriendStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UserProfile holds per-user aggregates and preferences. Workout totals are
// updated when a session completes.
type UserProfile struct {
	UserID              int           `json:"user_id"`
	Bio                 *string       `json:"bio,omitempty"`
	TotalWorkouts       int           `json:"total_workouts"`
	TotalWorkoutTime    time.Duration `json:"total_workout_time"`
	Units               string        `json:"units"` // metric or imperial
	OnboardingCompleted bool          `json:"onboarding_completed"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}
