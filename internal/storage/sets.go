package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const setColumns = `id, user_id, routine_id, session_id, exercise_id,
	set_number, exercise_set_number, reps, weight, weight_unit,
	side, label, note, rpe, completed_at, created_at`

// AddSet appends a set to an active session. Both ordering counters are
// computed from the current ledger contents in the same serializable
// transaction as the insert, by the same rule the client mirror applies:
// set_number extends the highest number ever assigned in the session, so
// deletions leave gaps rather than freeing numbers; exercise_set_number
// counts within the exercise. The session heartbeat is refreshed as a side
// effect.
func (db *DB) AddSet(ctx context.Context, userID int, sessionID uuid.UUID, input models.SetInput) (*models.WorkoutSet, error) {
	if input.ExerciseID == "" {
		return nil, fmt.Errorf("exercise_id is required")
	}
	if _, err := models.ParseWeightUnit(string(input.WeightUnit)); err != nil {
		return nil, err
	}

	var set *models.WorkoutSet
	err := db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		session, err := getSessionForUpdate(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status != models.StatusActive {
			return fmt.Errorf("%w: cannot add a set to a %s session", models.ErrInvalidState, session.Status)
		}

		rows, err := tx.Query(ctx,
			`SELECT set_number, exercise_id FROM workout_sets WHERE session_id = $1`,
			sessionID)
		if err != nil {
			return fmt.Errorf("querying session ledger: %w", err)
		}
		var ledger []models.SetRef
		for rows.Next() {
			var ref models.SetRef
			if err := rows.Scan(&ref.SetNumber, &ref.ExerciseID); err != nil {
				rows.Close()
				return fmt.Errorf("scanning session ledger: %w", err)
			}
			ledger = append(ledger, ref)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("querying session ledger: %w", err)
		}
		setNumber, exerciseSetNumber := models.NextSetNumbers(ledger, input.ExerciseID)

		now := time.Now()
		set = &models.WorkoutSet{
			ID:                uuid.New(),
			UserID:            userID,
			RoutineID:         session.RoutineID,
			SessionID:         sessionID,
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
			CreatedAt:         now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO workout_sets (id, user_id, routine_id, session_id, exercise_id,
			                          set_number, exercise_set_number, reps, weight, weight_unit,
			                          side, label, note, rpe, completed_at, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		`, set.ID, set.UserID, set.RoutineID, set.SessionID, set.ExerciseID,
			set.SetNumber, set.ExerciseSetNumber, set.Reps, set.Weight, set.WeightUnit,
			set.Side, set.Label, set.Note, set.RPE, set.CompletedAt, set.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: inserting set: %v", models.ErrMutationFailed, err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE workout_sessions SET last_heartbeat = $2 WHERE id = $1`,
			sessionID, now); err != nil {
			return fmt.Errorf("%w: refreshing heartbeat: %v", models.ErrMutationFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// UpdateSet applies a partial content update to a set the user owns.
// Numbering, exercise, and session references never change.
func (db *DB) UpdateSet(ctx context.Context, userID int, setID uuid.UUID, patch models.SetPatch) (*models.WorkoutSet, error) {
	row := db.Pool.QueryRow(ctx, `
		UPDATE workout_sets SET
			reps = COALESCE($3, reps),
			weight = COALESCE($4, weight),
			weight_unit = COALESCE($5, weight_unit),
			side = COALESCE($6, side),
			label = COALESCE($7, label),
			note = COALESCE($8, note),
			rpe = COALESCE($9, rpe)
		WHERE id = $1 AND user_id = $2
		RETURNING `+setColumns,
		setID, userID, patch.Reps, patch.Weight, patch.WeightUnit,
		patch.Side, patch.Label, patch.Note, patch.RPE)

	set, err := scanSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating set: %w", err)
	}
	return set, nil
}

// DeleteSet hard-deletes a set the user owns and resequences the remaining
// sets of the same exercise in the session so their exercise_set_number stays
// contiguous from 1 in the original relative order. Global set numbers are
// left untouched; gaps there are permitted.
func (db *DB) DeleteSet(ctx context.Context, userID int, setID uuid.UUID) error {
	return db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		var sessionID uuid.UUID
		var exerciseID string
		err := tx.QueryRow(ctx, `
			DELETE FROM workout_sets WHERE id = $1 AND user_id = $2
			RETURNING session_id, exercise_id
		`, setID, userID).Scan(&sessionID, &exerciseID)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: deleting set: %v", models.ErrMutationFailed, err)
		}

		_, err = tx.Exec(ctx, `
			WITH ranked AS (
				SELECT id, ROW_NUMBER() OVER (ORDER BY exercise_set_number) AS rn
				FROM workout_sets
				WHERE session_id = $1 AND exercise_id = $2
			)
			UPDATE workout_sets ws
			SET exercise_set_number = ranked.rn
			FROM ranked
			WHERE ws.id = ranked.id AND ws.exercise_set_number <> ranked.rn
		`, sessionID, exerciseID)
		if err != nil {
			return fmt.Errorf("%w: resequencing sets: %v", models.ErrMutationFailed, err)
		}
		return nil
	})
}

// GetSetByID returns a single set. Only the owner may read individual sets.
func (db *DB) GetSetByID(ctx context.Context, userID int, setID uuid.UUID) (*models.WorkoutSet, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+setColumns+` FROM workout_sets WHERE id = $1 AND user_id = $2`,
		setID, userID)
	set, err := scanSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying set: %w", err)
	}
	return set, nil
}

// setsForSession returns all of a session's sets, ascending by global set
// number.
func (db *DB) setsForSession(ctx context.Context, sessionID uuid.UUID) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE session_id = $1 ORDER BY set_number ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()
	return collectSets(rows)
}

// GetExercisePRs scans all of the user's sets for an exercise, across all
// sessions, and returns the all-time records. Returns nil when the user has
// never logged the exercise.
func (db *DB) GetExercisePRs(ctx context.Context, userID int, exerciseID string) (*models.ExercisePRs, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE user_id = $1 AND exercise_id = $2`, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise sets: %w", err)
	}
	defer rows.Close()

	sets, err := collectSets(rows)
	if err != nil {
		return nil, err
	}
	return models.ComputePRs(exerciseID, sets), nil
}

func collectSets(rows pgx.Rows) ([]models.WorkoutSet, error) {
	sets := []models.WorkoutSet{}
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, *set)
	}
	return sets, rows.Err()
}

func scanSet(row pgx.Row) (*models.WorkoutSet, error) {
	var s models.WorkoutSet
	if err := row.Scan(&s.ID, &s.UserID, &s.RoutineID, &s.SessionID, &s.ExerciseID,
		&s.SetNumber, &s.ExerciseSetNumber, &s.Reps, &s.Weight, &s.WeightUnit,
		&s.Side, &s.Label, &s.Note, &s.RPE, &s.CompletedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
