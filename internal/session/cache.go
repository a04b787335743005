package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cache persists the mirror to a local SQLite database so an in-progress
// workout survives client restarts. The cache holds at most one session.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the SQLite cache at dir/session.db.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session cache: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS active_session (
			id              TEXT PRIMARY KEY,
			routine_id      TEXT NOT NULL,
			status          TEXT NOT NULL,
			started_at      TIMESTAMP NOT NULL,
			paused_at       TIMESTAMP,
			total_paused_ms INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS local_sets (
			local_id            TEXT PRIMARY KEY,
			server_id           TEXT,
			saved               INTEGER NOT NULL DEFAULT 0,
			exercise_id         TEXT NOT NULL,
			set_number          INTEGER NOT NULL,
			exercise_set_number INTEGER NOT NULL,
			reps                INTEGER NOT NULL,
			weight              REAL NOT NULL,
			weight_unit         TEXT NOT NULL,
			side                TEXT,
			label               TEXT,
			note                TEXT,
			rpe                 REAL,
			completed_at        TIMESTAMP NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache tables: %w", err)
	}

	return &Cache{db: db}, nil
}

// Save replaces the cached session with the mirror's current state.
func (c *Cache) Save(m *Mirror) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM active_session`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM local_sets`); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO active_session (id, routine_id, status, started_at, paused_at, total_paused_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SessionID.String(), m.RoutineID.String(), string(m.Status),
		m.StartedAt, m.PausedAt, m.TotalPausedTime.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("caching session: %w", err)
	}

	for _, s := range m.Sets() {
		var serverID *string
		if s.ServerID != nil {
			v := s.ServerID.String()
			serverID = &v
		}
		_, err := tx.Exec(
			`INSERT INTO local_sets (local_id, server_id, saved, exercise_id, set_number,
			                         exercise_set_number, reps, weight, weight_unit,
			                         side, label, note, rpe, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.LocalID.String(), serverID, s.SavedToDB, s.ExerciseID, s.SetNumber,
			s.ExerciseSetNumber, s.Reps, s.Weight, string(s.WeightUnit),
			nullableString((*string)(s.Side)), nullableString((*string)(s.Label)),
			s.Note, s.RPE, s.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("caching set %s: %w", s.LocalID, err)
		}
	}

	return tx.Commit()
}

// Load returns the cached mirror, or nil when the cache is empty.
func (c *Cache) Load() (*Mirror, error) {
	row := c.db.QueryRow(
		`SELECT id, routine_id, status, started_at, paused_at, total_paused_ms FROM active_session`)

	var (
		idStr, routineStr, statusStr string
		startedAt                    time.Time
		pausedAt                     *time.Time
		totalPausedMS                int64
	)
	err := row.Scan(&idStr, &routineStr, &statusStr, &startedAt, &pausedAt, &totalPausedMS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cached session: %w", err)
	}

	m := &Mirror{
		StartedAt:       startedAt,
		PausedAt:        pausedAt,
		TotalPausedTime: time.Duration(totalPausedMS) * time.Millisecond,
	}
	if m.SessionID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("cached session id: %w", err)
	}
	if m.RoutineID, err = uuid.Parse(routineStr); err != nil {
		return nil, fmt.Errorf("cached routine id: %w", err)
	}
	if m.Status, err = models.ParseSessionStatus(statusStr); err != nil {
		return nil, fmt.Errorf("cached session: %w", err)
	}

	rows, err := c.db.Query(
		`SELECT local_id, server_id, saved, exercise_id, set_number, exercise_set_number,
		        reps, weight, weight_unit, side, label, note, rpe, completed_at
		 FROM local_sets ORDER BY set_number`)
	if err != nil {
		return nil, fmt.Errorf("loading cached sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s                 LocalSet
			localStr          string
			serverStr         *string
			unitStr           string
			sideStr, labelStr *string
		)
		err := rows.Scan(&localStr, &serverStr, &s.SavedToDB, &s.ExerciseID,
			&s.SetNumber, &s.ExerciseSetNumber, &s.Reps, &s.Weight, &unitStr,
			&sideStr, &labelStr, &s.Note, &s.RPE, &s.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning cached set: %w", err)
		}
		if s.LocalID, err = uuid.Parse(localStr); err != nil {
			return nil, fmt.Errorf("cached set id: %w", err)
		}
		if serverStr != nil {
			id, err := uuid.Parse(*serverStr)
			if err != nil {
				return nil, fmt.Errorf("cached server id: %w", err)
			}
			s.ServerID = &id
		}
		s.WeightUnit = models.WeightUnit(unitStr)
		s.Side = (*models.Side)(sideStr)
		s.Label = (*models.SetLabel)(labelStr)
		m.sets = append(m.sets, s)
	}
	return m, rows.Err()
}

// Clear wipes the cached session, called once a workout reaches a terminal
// state.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM active_session`); err != nil {
		return err
	}
	_, err := c.db.Exec(`DELETE FROM local_sets`)
	return err
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
