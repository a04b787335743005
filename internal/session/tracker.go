package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// heartbeatInterval is how often the tracker reports liveness for an active
// session.
const heartbeatInterval = 30 * time.Second

// Tracker drives one workout from the client side. Set mutations apply to the
// local mirror immediately and roll back if the server rejects them; lifecycle
// transitions go to the server first because it owns the state machine.
type Tracker struct {
	client *Client
	cache  *Cache
	log    *slog.Logger

	mu     sync.Mutex
	mirror *Mirror

	stopHeartbeat context.CancelFunc
	heartbeatDone chan struct{}
}

// NewTracker creates a tracker. The cache is optional; pass nil to track
// in memory only.
func NewTracker(client *Client, cache *Cache, log *slog.Logger) *Tracker {
	return &Tracker{client: client, cache: cache, log: log}
}

// Start begins a new workout from a routine and starts the heartbeat loop.
func (t *Tracker) Start(ctx context.Context, routineID uuid.UUID, visibility *models.Visibility, name *string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror != nil && !t.mirror.Status.Terminal() {
		return fmt.Errorf("%w: a workout is already being tracked", models.ErrInvalidState)
	}

	detail, err := t.client.StartWorkout(ctx, routineID, visibility, name)
	if err != nil {
		return err
	}
	t.mirror = NewMirror(detail)
	t.persist()
	t.startHeartbeat(detail.ID)
	return nil
}

// Restore picks up the caller's in-progress session from the server, if any.
// Unsaved sets from the local cache are replayed so nothing logged offline is
// lost. Reports whether a session was found.
func (t *Tracker) Restore(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	detail, err := t.client.GetActive(ctx)
	if err != nil {
		return false, err
	}
	if detail == nil {
		if t.cache != nil {
			t.cache.Clear()
		}
		return false, nil
	}

	var pending []LocalSet
	if t.cache != nil {
		if cached, err := t.cache.Load(); err != nil {
			t.log.Warn("session cache unreadable, starting clean", "error", err)
		} else if cached != nil && cached.SessionID == detail.ID {
			pending = cached.Unsaved()
		}
	}

	t.mirror = NewMirror(detail)
	for _, s := range pending {
		input := models.SetInput{
			ExerciseID: s.ExerciseID,
			Reps:       s.Reps,
			Weight:     s.Weight,
			WeightUnit: s.WeightUnit,
			Side:       s.Side,
			Label:      s.Label,
			Note:       s.Note,
			RPE:        s.RPE,
		}
		localID := t.mirror.Append(input, s.CompletedAt)
		saved, err := t.client.AddSet(ctx, detail.ID, input)
		if err != nil {
			t.log.Warn("replaying cached set failed", "exercise_id", s.ExerciseID, "error", err)
			t.mirror.Remove(localID)
			continue
		}
		t.mirror.Confirm(localID, saved)
	}
	t.persist()

	if t.mirror.Status == models.StatusActive {
		t.startHeartbeat(detail.ID)
	}
	return true, nil
}

// Sets returns the current set list.
func (t *Tracker) Sets() []LocalSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mirror == nil {
		return nil
	}
	return t.mirror.Sets()
}

// Status returns the tracked session's status, or "" when nothing is tracked.
func (t *Tracker) Status() models.SessionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mirror == nil {
		return ""
	}
	return t.mirror.Status
}

// Elapsed is the workout clock right now.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mirror == nil {
		return 0
	}
	return t.mirror.ActiveDuration(time.Now())
}

// AddSet logs a set optimistically: it appears in the mirror at once and is
// removed again if the server rejects it.
func (t *Tracker) AddSet(ctx context.Context, input models.SetInput) (uuid.UUID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return uuid.Nil, fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	localID := t.mirror.Append(input, time.Now())
	t.persist()

	saved, err := t.client.AddSet(ctx, t.mirror.SessionID, input)
	if err != nil {
		t.mirror.Remove(localID)
		t.persist()
		return uuid.Nil, err
	}
	t.mirror.Confirm(localID, saved)
	t.persist()
	return localID, nil
}

// UpdateSet patches a confirmed set, restoring the prior values on failure.
func (t *Tracker) UpdateSet(ctx context.Context, localID uuid.UUID, patch models.SetPatch) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	prior, ok := t.mirror.Apply(localID, patch)
	if !ok {
		return models.ErrNotFound
	}
	if prior.ServerID == nil {
		// Unsaved sets only exist locally; nothing to send.
		t.persist()
		return nil
	}
	t.persist()

	if _, err := t.client.UpdateSet(ctx, *prior.ServerID, patch); err != nil {
		t.mirror.Replace(prior)
		t.persist()
		return err
	}
	return nil
}

// RemoveSet deletes a set optimistically and reinserts it if the server
// rejects the delete.
func (t *Tracker) RemoveSet(ctx context.Context, localID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	removed, ok := t.mirror.Remove(localID)
	if !ok {
		return models.ErrNotFound
	}
	t.persist()

	if removed.ServerID == nil {
		return nil
	}
	if err := t.client.DeleteSet(ctx, *removed.ServerID); err != nil {
		t.mirror.Restore(removed)
		t.persist()
		return err
	}
	return nil
}

// Pause suspends the workout. The heartbeat loop stops; a paused session is
// expected to go quiet.
func (t *Tracker) Pause(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	detail, err := t.client.Pause(ctx, t.mirror.SessionID)
	if err != nil {
		return err
	}
	t.adopt(detail)
	t.haltHeartbeat()
	return nil
}

// Resume restarts a paused workout and the heartbeat loop with it.
func (t *Tracker) Resume(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	detail, err := t.client.Resume(ctx, t.mirror.SessionID)
	if err != nil {
		return err
	}
	t.adopt(detail)
	t.startHeartbeat(detail.ID)
	return nil
}

// Complete finalizes the workout and clears the local cache.
func (t *Tracker) Complete(ctx context.Context, notes *string) (*models.SessionDetail, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return nil, fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	detail, err := t.client.Complete(ctx, t.mirror.SessionID, notes)
	if err != nil {
		return nil, err
	}
	t.finish()
	return detail, nil
}

// Cancel discards the workout and clears the local cache.
func (t *Tracker) Cancel(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mirror == nil {
		return fmt.Errorf("%w: no workout in progress", models.ErrInvalidState)
	}
	if _, err := t.client.Cancel(ctx, t.mirror.SessionID); err != nil {
		return err
	}
	t.finish()
	return nil
}

// Close stops the heartbeat loop without touching session state, for client
// shutdown mid-workout.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltHeartbeat()
}

// adopt refreshes the mirror's session fields from a server response, keeping
// the local set list.
func (t *Tracker) adopt(detail *models.SessionDetail) {
	t.mirror.Status = detail.Status
	t.mirror.PausedAt = detail.PausedAt
	t.mirror.TotalPausedTime = detail.TotalPausedTime
	t.persist()
}

func (t *Tracker) finish() {
	t.haltHeartbeat()
	t.mirror = nil
	if t.cache != nil {
		if err := t.cache.Clear(); err != nil {
			t.log.Warn("clearing session cache failed", "error", err)
		}
	}
}

func (t *Tracker) persist() {
	if t.cache == nil || t.mirror == nil {
		return
	}
	if err := t.cache.Save(t.mirror); err != nil {
		t.log.Warn("persisting session cache failed", "error", err)
	}
}

// startHeartbeat launches the liveness loop. Failures are logged and ignored;
// a missed heartbeat never interrupts a workout.
func (t *Tracker) startHeartbeat(sessionID uuid.UUID) {
	t.haltHeartbeat()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.stopHeartbeat = cancel
	t.heartbeatDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := t.client.Heartbeat(ctx, sessionID); err != nil {
					t.log.Warn("heartbeat failed", "session_id", sessionID, "error", err)
				}
			}
		}
	}()
}

func (t *Tracker) haltHeartbeat() {
	if t.stopHeartbeat != nil {
		t.stopHeartbeat()
		<-t.heartbeatDone
		t.stopHeartbeat = nil
		t.heartbeatDone = nil
	}
}
