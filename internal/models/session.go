package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is one execution instance of a routine.
type WorkoutSession struct {
	ID              uuid.UUID     `json:"id"`
	UserID          int           `json:"user_id"`
	RoutineID       uuid.UUID     `json:"routine_id"`
	Status          SessionStatus `json:"status"`
	Visibility      Visibility    `json:"visibility"`
	Name            *string       `json:"name,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	PausedAt        *time.Time    `json:"paused_at,omitempty"`
	TotalPausedTime time.Duration `json:"total_paused_time"`
	LastHeartbeat   time.Time     `json:"last_heartbeat"`
}

// ActiveDuration returns how long the session has been actively running at
// the given instant: wall time minus accumulated pauses, minus the current
// pause if one is open. Never negative.
func (s *WorkoutSession) ActiveDuration(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt) - s.TotalPausedTime
	if s.Status == StatusPaused && s.PausedAt != nil {
		d -= now.Sub(*s.PausedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// SessionDetail is a session enriched with its sets and routine for display.
type SessionDetail struct {
	WorkoutSession
	Sets    []WorkoutSet `json:"sets"`
	Routine *Routine     `json:"routine,omitempty"`
}

// SessionSummary is a session enriched with routine info and a set count,
// used in recent/history listings.
type SessionSummary struct {
	WorkoutSession
	Routine  *Routine `json:"routine,omitempty"`
	SetCount int      `json:"set_count"`
}
