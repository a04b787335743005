// Package session implements the client-side view of a workout in progress:
// an optimistic local mirror of the server's set ledger, an HTTP client for
// the lifecycle API, and a tracker that keeps the two in sync.
package session

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// LocalSet is one set as the client sees it. Every set gets a LocalID the
// moment the user logs it; ServerID and SavedToDB arrive once the server
// confirms the write. Provisional numbering follows the server's rules so the
// display never jumps when confirmation lands.
type LocalSet struct {
	LocalID           uuid.UUID
	ServerID          *uuid.UUID
	SavedToDB         bool
	ExerciseID        string
	SetNumber         int
	ExerciseSetNumber int
	Reps              int
	Weight            float64
	WeightUnit        models.WeightUnit
	Side              *models.Side
	Label             *models.SetLabel
	Note              *string
	RPE               *float64
	CompletedAt       time.Time
}

// Volume is the set's weight × reps.
func (s *LocalSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Mirror is the local copy of an in-progress session. It is not safe for
// concurrent use; the tracker serializes access.
type Mirror struct {
	SessionID       uuid.UUID
	RoutineID       uuid.UUID
	Status          models.SessionStatus
	StartedAt       time.Time
	PausedAt        *time.Time
	TotalPausedTime time.Duration

	sets []LocalSet
}

// NewMirror starts a fresh mirror from a server session.
func NewMirror(detail *models.SessionDetail) *Mirror {
	m := &Mirror{
		SessionID:       detail.ID,
		RoutineID:       detail.RoutineID,
		Status:          detail.Status,
		StartedAt:       detail.StartedAt,
		PausedAt:        detail.PausedAt,
		TotalPausedTime: detail.TotalPausedTime,
	}
	for _, set := range detail.Sets {
		m.sets = append(m.sets, confirmedLocalSet(set))
	}
	return m
}

func confirmedLocalSet(set models.WorkoutSet) LocalSet {
	id := set.ID
	return LocalSet{
		LocalID:           uuid.New(),
		ServerID:          &id,
		SavedToDB:         true,
		ExerciseID:        set.ExerciseID,
		SetNumber:         set.SetNumber,
		ExerciseSetNumber: set.ExerciseSetNumber,
		Reps:              set.Reps,
		Weight:            set.Weight,
		WeightUnit:        set.WeightUnit,
		Side:              set.Side,
		Label:             set.Label,
		Note:              set.Note,
		RPE:               set.RPE,
		CompletedAt:       set.CompletedAt,
	}
}

// Sets returns a copy of the current set list in display order.
func (m *Mirror) Sets() []LocalSet {
	out := make([]LocalSet, len(m.sets))
	copy(out, m.sets)
	return out
}

// ActiveDuration is the running workout clock at the given instant.
func (m *Mirror) ActiveDuration(now time.Time) time.Duration {
	session := models.WorkoutSession{
		Status:          m.Status,
		StartedAt:       m.StartedAt,
		PausedAt:        m.PausedAt,
		TotalPausedTime: m.TotalPausedTime,
	}
	return session.ActiveDuration(now)
}

// Append adds an unsaved set with provisional numbering, applying the same
// counter rule the server uses so the display never jumps when confirmation
// lands. Returns the new set's LocalID.
func (m *Mirror) Append(input models.SetInput, now time.Time) uuid.UUID {
	ledger := make([]models.SetRef, len(m.sets))
	for i, s := range m.sets {
		ledger[i] = models.SetRef{SetNumber: s.SetNumber, ExerciseID: s.ExerciseID}
	}
	setNumber, exerciseSetNumber := models.NextSetNumbers(ledger, input.ExerciseID)
	set := LocalSet{
		LocalID:           uuid.New(),
		ExerciseID:        input.ExerciseID,
		SetNumber:         setNumber,
		ExerciseSetNumber: exerciseSetNumber,
		Reps:              input.Reps,
		Weight:            input.Weight,
		WeightUnit:        input.WeightUnit,
		Side:              input.Side,
		Label:             input.Label,
		Note:              input.Note,
		RPE:               input.RPE,
		CompletedAt:       now,
	}
	m.sets = append(m.sets, set)
	return set.LocalID
}

// Confirm marks a set as saved, adopting the server's identity and numbering.
func (m *Mirror) Confirm(localID uuid.UUID, saved *models.WorkoutSet) error {
	i := m.index(localID)
	if i < 0 {
		return fmt.Errorf("set %s not in mirror", localID)
	}
	id := saved.ID
	m.sets[i].ServerID = &id
	m.sets[i].SavedToDB = true
	m.sets[i].SetNumber = saved.SetNumber
	m.sets[i].ExerciseSetNumber = saved.ExerciseSetNumber
	m.sets[i].CompletedAt = saved.CompletedAt
	return nil
}

// Remove deletes a set and closes the per-exercise numbering gap it leaves,
// the same resequencing the server performs. Global numbers keep their gaps.
func (m *Mirror) Remove(localID uuid.UUID) (LocalSet, bool) {
	i := m.index(localID)
	if i < 0 {
		return LocalSet{}, false
	}
	removed := m.sets[i]
	m.sets = append(m.sets[:i], m.sets[i+1:]...)
	m.resequenceExercise(removed.ExerciseID)
	return removed, true
}

// Restore re-inserts a previously removed set in global-number order, used to
// roll back an optimistic delete the server rejected.
func (m *Mirror) Restore(set LocalSet) {
	i := len(m.sets)
	for j, s := range m.sets {
		if s.SetNumber > set.SetNumber {
			i = j
			break
		}
	}
	m.sets = append(m.sets[:i], append([]LocalSet{set}, m.sets[i:]...)...)
	m.resequenceExercise(set.ExerciseID)
}

// resequenceExercise renumbers an exercise's sets 1..n in global order.
func (m *Mirror) resequenceExercise(exerciseID string) {
	n := 0
	for i := range m.sets {
		if m.sets[i].ExerciseID == exerciseID {
			n++
			m.sets[i].ExerciseSetNumber = n
		}
	}
}

// Apply patches a set's content fields in place. Returns the prior state for
// rollback.
func (m *Mirror) Apply(localID uuid.UUID, patch models.SetPatch) (LocalSet, bool) {
	i := m.index(localID)
	if i < 0 {
		return LocalSet{}, false
	}
	prior := m.sets[i]
	if patch.Reps != nil {
		m.sets[i].Reps = *patch.Reps
	}
	if patch.Weight != nil {
		m.sets[i].Weight = *patch.Weight
	}
	if patch.WeightUnit != nil {
		m.sets[i].WeightUnit = *patch.WeightUnit
	}
	if patch.Side != nil {
		m.sets[i].Side = patch.Side
	}
	if patch.Label != nil {
		m.sets[i].Label = patch.Label
	}
	if patch.Note != nil {
		m.sets[i].Note = patch.Note
	}
	if patch.RPE != nil {
		m.sets[i].RPE = patch.RPE
	}
	return prior, true
}

// Replace overwrites a set wholesale, used to roll back a failed update.
func (m *Mirror) Replace(set LocalSet) {
	if i := m.index(set.LocalID); i >= 0 {
		m.sets[i] = set
	}
}

// Pause freezes the workout clock.
func (m *Mirror) Pause(now time.Time) {
	if m.Status != models.StatusActive {
		return
	}
	m.Status = models.StatusPaused
	t := now
	m.PausedAt = &t
}

// Resume folds the elapsed pause into TotalPausedTime and restarts the clock.
func (m *Mirror) Resume(now time.Time) {
	if m.Status != models.StatusPaused {
		return
	}
	if m.PausedAt != nil {
		m.TotalPausedTime += now.Sub(*m.PausedAt)
	}
	m.Status = models.StatusActive
	m.PausedAt = nil
}

// Unsaved returns the sets the server has not confirmed yet.
func (m *Mirror) Unsaved() []LocalSet {
	var out []LocalSet
	for _, s := range m.sets {
		if !s.SavedToDB {
			out = append(out, s)
		}
	}
	return out
}

func (m *Mirror) index(localID uuid.UUID) int {
	for i, s := range m.sets {
		if s.LocalID == localID {
			return i
		}
	}
	return -1
}
