package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Window sizes for routine aggregates. These are display windows, not
// all-time scans; true personal records come from GetExercisePRs.
const (
	defaultHistoryLimit = 100
	summaryWindow       = 50
)

// GetExerciseHistory returns the recent sets for one exercise within a
// routine, grouped by the session they were logged in. Sessions are ordered
// most recent first; sets within a session ascend by exercise set number.
// Visibility-gated: a friend may read a shared routine's history.
func (db *DB) GetExerciseHistory(ctx context.Context, viewerID int, routineID uuid.UUID, exerciseID string, limit int) (*models.ExerciseHistory, error) {
	if _, err := db.GetRoutine(ctx, viewerID, routineID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE routine_id = $1 AND exercise_id = $2
		 ORDER BY completed_at DESC
		 LIMIT $3`, routineID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	sets, err := collectSets(rows)
	if err != nil {
		return nil, err
	}

	sessions := make(map[uuid.UUID]*models.WorkoutSession)
	for _, s := range sets {
		if _, ok := sessions[s.SessionID]; ok {
			continue
		}
		row := db.Pool.QueryRow(ctx,
			`SELECT `+sessionColumns+` FROM workout_sessions WHERE id = $1`, s.SessionID)
		session, err := scanSession(row)
		if err != nil {
			return nil, fmt.Errorf("querying history session: %w", err)
		}
		sessions[s.SessionID] = session
	}

	history := models.GroupSetsBySession(routineID, exerciseID, sets, sessions)
	return &history, nil
}

// GetRoutineWithHistory returns a routine plus, for each of its exercises, an
// aggregate over the most recent sets: best weight, best reps, last
// performed, and the window itself oldest-first for trend display.
// Visibility-gated like GetRoutine.
func (db *DB) GetRoutineWithHistory(ctx context.Context, viewerID int, routineID uuid.UUID) (*models.RoutineWithHistory, error) {
	routine, err := db.GetRoutine(ctx, viewerID, routineID)
	if err != nil {
		return nil, err
	}

	result := &models.RoutineWithHistory{
		Routine:         *routine,
		ExerciseHistory: make(map[string]models.ExerciseSummary, len(routine.Exercises)),
	}
	for _, ex := range routine.Exercises {
		rows, err := db.Pool.Query(ctx,
			`SELECT `+setColumns+` FROM workout_sets
			 WHERE routine_id = $1 AND exercise_id = $2
			 ORDER BY completed_at DESC
			 LIMIT $3`, routineID, ex.ExerciseID, summaryWindow)
		if err != nil {
			return nil, fmt.Errorf("querying exercise window: %w", err)
		}
		sets, err := collectSets(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		result.ExerciseHistory[ex.ExerciseID] = models.SummarizeExercise(sets)
	}
	return result, nil
}
