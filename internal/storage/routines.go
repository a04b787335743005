package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const routineColumns = `id, user_id, name, description, exercises, visibility,
	times_performed, last_performed_at, created_at, updated_at`

// CreateRoutine inserts a new routine owned by userID. Visibility defaults to
// private; the exercise list must have unique contiguous order values.
func (db *DB) CreateRoutine(ctx context.Context, userID int, name string, description *string,
	exercises []models.RoutineExercise, visibility *models.Visibility) (*models.Routine, error) {

	if name == "" {
		return nil, fmt.Errorf("routine name is required")
	}
	if err := models.ValidateExercises(exercises); err != nil {
		return nil, fmt.Errorf("invalid exercises: %w", err)
	}
	vis := models.VisibilityPrivate
	if visibility != nil {
		vis = *visibility
	}
	if exercises == nil {
		exercises = []models.RoutineExercise{}
	}
	exJSON, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding exercises: %w", err)
	}

	now := time.Now()
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO routines (id, user_id, name, description, exercises, visibility,
		                      times_performed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)
		RETURNING `+routineColumns,
		uuid.New(), userID, name, description, exJSON, vis, now)

	routine, err := scanRoutine(row)
	if err != nil {
		return nil, fmt.Errorf("inserting routine: %w", err)
	}
	return routine, nil
}

// UpdateRoutine applies a partial update. Owner-only; non-owners get
// ErrNotFound.
func (db *DB) UpdateRoutine(ctx context.Context, userID int, routineID uuid.UUID,
	name, description *string, exercises []models.RoutineExercise, visibility *models.Visibility) (*models.Routine, error) {

	var exJSON []byte
	if exercises != nil {
		if err := models.ValidateExercises(exercises); err != nil {
			return nil, fmt.Errorf("invalid exercises: %w", err)
		}
		var err error
		exJSON, err = json.Marshal(exercises)
		if err != nil {
			return nil, fmt.Errorf("encoding exercises: %w", err)
		}
	}

	row := db.Pool.QueryRow(ctx, `
		UPDATE routines SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			exercises = COALESCE($5, exercises),
			visibility = COALESCE($6, visibility),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+routineColumns,
		routineID, userID, name, description, exJSON, visibility)

	routine, err := scanRoutine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating routine: %w", err)
	}
	return routine, nil
}

// DeleteRoutine removes a routine the user owns, along with its sessions and
// sets (cascade).
func (db *DB) DeleteRoutine(ctx context.Context, userID int, routineID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM routines WHERE id = $1 AND user_id = $2`, routineID, userID)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListRoutines returns the user's routines, newest first.
func (db *DB) ListRoutines(ctx context.Context, userID int) ([]models.Routine, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+routineColumns+`
		FROM routines
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.Routine
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		result = append(result, *routine)
	}
	return result, rows.Err()
}

// GetRoutine returns a routine if the viewer may see it, per the visibility
// gate. viewerID 0 is anonymous. Returns ErrNotFound when the routine is
// absent or not viewable.
func (db *DB) GetRoutine(ctx context.Context, viewerID int, routineID uuid.UUID) (*models.Routine, error) {
	routine, err := db.getRoutineByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	ok, err := db.canView(ctx, routine.UserID, routine.Visibility, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNotFound
	}
	return routine, nil
}

func (db *DB) getRoutineByID(ctx context.Context, routineID uuid.UUID) (*models.Routine, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+routineColumns+` FROM routines WHERE id = $1`, routineID)
	routine, err := scanRoutine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	return routine, nil
}

func scanRoutine(row pgx.Row) (*models.Routine, error) {
	var r models.Routine
	var exJSON []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &exJSON, &r.Visibility,
		&r.TimesPerformed, &r.LastPerformedAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exJSON, &r.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}
	return &r, nil
}
