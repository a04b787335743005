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

const sessionColumns = `id, user_id, routine_id, status, visibility, name, notes,
	started_at, ended_at, paused_at, total_paused_ms, last_heartbeat`

// StartSession creates a new active session from a routine the caller owns.
// Visibility defaults to the routine's unless overridden. At most one
// in-progress (active or paused) session may exist per user; the check runs
// inside the same serializable transaction as the insert, backed by a partial
// unique index.
func (db *DB) StartSession(ctx context.Context, userID int, routineID uuid.UUID,
	visibility *models.Visibility, name *string) (*models.SessionDetail, error) {

	var detail *models.SessionDetail
	err := db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+routineColumns+` FROM routines WHERE id = $1 AND user_id = $2`,
			routineID, userID)
		routine, err := scanRoutine(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("querying routine: %w", err)
		}

		var inProgress bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM workout_sessions
				WHERE user_id = $1 AND status IN ('active', 'paused')
			)
		`, userID).Scan(&inProgress)
		if err != nil {
			return fmt.Errorf("checking in-progress sessions: %w", err)
		}
		if inProgress {
			return fmt.Errorf("%w: another session is already in progress", models.ErrInvalidState)
		}

		vis := routine.Visibility
		if visibility != nil {
			vis = *visibility
		}
		session := &models.WorkoutSession{
			ID:         uuid.New(),
			UserID:     userID,
			RoutineID:  routineID,
			Status:     models.StatusActive,
			Visibility: vis,
			Name:       name,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO workout_sessions (id, user_id, routine_id, status, visibility,
			                              name, started_at, total_paused_ms, last_heartbeat)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), 0, NOW())
			RETURNING started_at, last_heartbeat
		`, session.ID, userID, routineID, session.Status, vis, name).
			Scan(&session.StartedAt, &session.LastHeartbeat)
		if err != nil {
			return fmt.Errorf("%w: inserting session: %v", models.ErrMutationFailed, err)
		}

		detail = &models.SessionDetail{WorkoutSession: *session, Sets: []models.WorkoutSet{}, Routine: routine}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// PauseSession moves an active session to paused. Owner-only.
func (db *DB) PauseSession(ctx context.Context, userID int, sessionID uuid.UUID) error {
	return db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		session, err := getSessionForUpdate(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status != models.StatusActive {
			return fmt.Errorf("%w: cannot pause a %s session", models.ErrInvalidState, session.Status)
		}
		_, err = tx.Exec(ctx, `
			UPDATE workout_sessions
			SET status = 'paused', paused_at = NOW(), last_heartbeat = NOW()
			WHERE id = $1
		`, sessionID)
		if err != nil {
			return fmt.Errorf("%w: pausing session: %v", models.ErrMutationFailed, err)
		}
		return nil
	})
}

// ResumeSession moves a paused session back to active, folding the finished
// pause into the accumulated pause time.
func (db *DB) ResumeSession(ctx context.Context, userID int, sessionID uuid.UUID) error {
	return db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		session, err := getSessionForUpdate(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status != models.StatusPaused {
			return fmt.Errorf("%w: cannot resume a %s session", models.ErrInvalidState, session.Status)
		}
		// The finished pause is measured on the database clock, the same one
		// that stamped paused_at, so host clock skew cannot distort it.
		_, err = tx.Exec(ctx, `
			UPDATE workout_sessions
			SET status = 'active', paused_at = NULL, last_heartbeat = NOW(),
			    total_paused_ms = total_paused_ms
			        + COALESCE((EXTRACT(EPOCH FROM (NOW() - paused_at)) * 1000)::bigint, 0)
			WHERE id = $1
		`, sessionID)
		if err != nil {
			return fmt.Errorf("%w: resuming session: %v", models.ErrMutationFailed, err)
		}
		return nil
	})
}

// CompleteSession finalizes a session from any non-terminal state. A pause
// still open at completion is folded into the accumulated pause time, then
// the parent routine's counters and the owner's profile totals are bumped in
// the same transaction.
func (db *DB) CompleteSession(ctx context.Context, userID int, sessionID uuid.UUID, notes *string) error {
	return db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		session, err := getSessionForUpdate(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return fmt.Errorf("%w: session already %s", models.ErrInvalidState, session.Status)
		}

		// An open pause is folded on the database clock that stamped paused_at,
		// then the finalized timestamps come back for the duration math below.
		var endedAt time.Time
		var pausedMs int64
		err = tx.QueryRow(ctx, `
			UPDATE workout_sessions
			SET status = 'completed', ended_at = NOW(), last_heartbeat = NOW(),
			    total_paused_ms = total_paused_ms
			        + COALESCE((EXTRACT(EPOCH FROM (NOW() - paused_at)) * 1000)::bigint, 0),
			    paused_at = NULL, notes = COALESCE($2, notes)
			WHERE id = $1
			RETURNING ended_at, total_paused_ms
		`, sessionID, notes).Scan(&endedAt, &pausedMs)
		if err != nil {
			return fmt.Errorf("%w: completing session: %v", models.ErrMutationFailed, err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE routines
			SET times_performed = times_performed + 1, last_performed_at = $2, updated_at = $2
			WHERE id = $1
		`, session.RoutineID, endedAt)
		if err != nil {
			return fmt.Errorf("%w: updating routine stats: %v", models.ErrMutationFailed, err)
		}

		session.Status = models.StatusCompleted
		session.PausedAt = nil
		session.EndedAt = &endedAt
		session.TotalPausedTime = time.Duration(pausedMs) * time.Millisecond
		activeMs := session.ActiveDuration(endedAt).Milliseconds()
		_, err = tx.Exec(ctx, `
			INSERT INTO user_profiles (user_id, total_workouts, total_workout_ms)
			VALUES ($1, 1, $2)
			ON CONFLICT (user_id) DO UPDATE SET
				total_workouts = user_profiles.total_workouts + 1,
				total_workout_ms = user_profiles.total_workout_ms + $2,
				updated_at = NOW()
		`, userID, activeMs)
		if err != nil {
			return fmt.Errorf("%w: updating profile totals: %v", models.ErrMutationFailed, err)
		}
		return nil
	})
}

// CancelSession discards a session from any non-terminal state. Every set
// belonging to the session is deleted before the status flips; both happen in
// one transaction, so an interrupted cancel leaves the prior status and a
// retry is safe.
func (db *DB) CancelSession(ctx context.Context, userID int, sessionID uuid.UUID) error {
	return db.inSerializableTx(ctx, func(tx pgx.Tx) error {
		session, err := getSessionForUpdate(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status.Terminal() {
			return fmt.Errorf("%w: session already %s", models.ErrInvalidState, session.Status)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM workout_sets WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("%w: deleting session sets: %v", models.ErrMutationFailed, err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE workout_sessions
			SET status = 'cancelled', ended_at = NOW(), paused_at = NULL, last_heartbeat = NOW()
			WHERE id = $1
		`, sessionID)
		if err != nil {
			return fmt.Errorf("%w: cancelling session: %v", models.ErrMutationFailed, err)
		}
		return nil
	})
}

// Heartbeat refreshes the session's liveness timestamp. No other state changes.
func (db *DB) Heartbeat(ctx context.Context, userID int, sessionID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE workout_sessions SET last_heartbeat = NOW()
		WHERE id = $1 AND user_id = $2 AND status NOT IN ('completed', 'cancelled')
	`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("%w: heartbeat: %v", models.ErrMutationFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetActiveSession returns the user's in-progress session with sets and
// routine, preferring active over paused. Returns (nil, nil) when the user
// has no session in progress.
func (db *DB) GetActiveSession(ctx context.Context, userID int) (*models.SessionDetail, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM workout_sessions
		WHERE user_id = $1 AND status IN ('active', 'paused')
		ORDER BY CASE status WHEN 'active' THEN 0 ELSE 1 END
		LIMIT 1
	`, userID)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active session: %w", err)
	}
	return db.enrichSession(ctx, session)
}

// GetSessionByID returns a session with sets and routine if the viewer may
// see it. viewerID 0 is anonymous. Not-viewable and absent are both
// ErrNotFound.
func (db *DB) GetSessionByID(ctx context.Context, viewerID int, sessionID uuid.UUID) (*models.SessionDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions WHERE id = $1`, sessionID)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	ok, err := db.canView(ctx, session.UserID, session.Visibility, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNotFound
	}
	return db.enrichSession(ctx, session)
}

// RecentSessions returns the user's most recent sessions with routine info
// and set counts.
func (db *DB) RecentSessions(ctx context.Context, userID, limit int) ([]models.SessionSummary, error) {
	return db.querySummaries(ctx, `
		SELECT `+sessionColumns+` FROM workout_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, userID, limit)
}

// SessionHistory returns the user's sessions, optionally filtered by status.
func (db *DB) SessionHistory(ctx context.Context, userID int, status *models.SessionStatus, limit int) ([]models.SessionSummary, error) {
	return db.querySummaries(ctx, `
		SELECT `+sessionColumns+` FROM workout_sessions
		WHERE user_id = $1 AND ($3::text IS NULL OR status = $3)
		ORDER BY started_at DESC
		LIMIT $2
	`, userID, limit, status)
}

// ActiveSessionsForFriends returns active sessions of the user's accepted
// friends that are shared with friends or public visibility.
func (db *DB) ActiveSessionsForFriends(ctx context.Context, userID int) ([]models.SessionSummary, error) {
	friendIDs, err := db.friendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []models.SessionSummary{}, nil
	}
	return db.querySummaries(ctx, `
		SELECT `+sessionColumns+` FROM workout_sessions
		WHERE user_id = ANY($1) AND status = 'active'
		  AND visibility IN ('friends', 'public')
		ORDER BY started_at DESC
	`, friendIDs)
}

// SpectatableSessions returns live sessions the user may watch: friends'
// active friends-visible sessions plus all active public sessions from other
// users.
func (db *DB) SpectatableSessions(ctx context.Context, userID int) ([]models.SessionSummary, error) {
	friendIDs, err := db.friendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return db.querySummaries(ctx, `
		SELECT `+sessionColumns+` FROM workout_sessions
		WHERE status = 'active' AND user_id <> $1
		  AND (visibility = 'public' OR (visibility = 'friends' AND user_id = ANY($2)))
		ORDER BY started_at DESC
	`, userID, friendIDs)
}

func (db *DB) querySummaries(ctx context.Context, query string, args ...any) ([]models.SessionSummary, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.WorkoutSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		summary := models.SessionSummary{WorkoutSession: sessions[i]}
		if routine, err := db.getRoutineByID(ctx, sessions[i].RoutineID); err == nil {
			summary.Routine = routine
		}
		if err := db.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM workout_sets WHERE session_id = $1`,
			sessions[i].ID).Scan(&summary.SetCount); err != nil {
			return nil, fmt.Errorf("counting sets: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// enrichSession attaches the session's sets (ascending global set number) and
// its routine.
func (db *DB) enrichSession(ctx context.Context, session *models.WorkoutSession) (*models.SessionDetail, error) {
	sets, err := db.setsForSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	detail := &models.SessionDetail{WorkoutSession: *session, Sets: sets}
	if routine, err := db.getRoutineByID(ctx, session.RoutineID); err == nil {
		detail.Routine = routine
	}
	return detail, nil
}

// getSessionForUpdate loads a session row locked for the transaction,
// scoped to the owner. Non-ownership is reported as ErrNotFound.
func getSessionForUpdate(ctx context.Context, tx pgx.Tx, userID int, sessionID uuid.UUID) (*models.WorkoutSession, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		sessionID, userID)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return session, nil
}

func scanSession(row pgx.Row) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var pausedMs int64
	if err := row.Scan(&s.ID, &s.UserID, &s.RoutineID, &s.Status, &s.Visibility,
		&s.Name, &s.Notes, &s.StartedAt, &s.EndedAt, &s.PausedAt,
		&pausedMs, &s.LastHeartbeat); err != nil {
		return nil, err
	}
	s.TotalPausedTime = time.Duration(pausedMs) * time.Millisecond
	return &s, nil
}
