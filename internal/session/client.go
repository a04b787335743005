package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Client talks to the LiftLog server's workout API over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the LiftLog server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StartWorkout begins a session from a routine.
func (c *Client) StartWorkout(ctx context.Context, routineID uuid.UUID, visibility *models.Visibility, name *string) (*models.SessionDetail, error) {
	body := map[string]any{"routine_id": routineID}
	if visibility != nil {
		body["visibility"] = *visibility
	}
	if name != nil {
		body["name"] = *name
	}
	var detail models.SessionDetail
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", body, &detail); err != nil {
		return nil, fmt.Errorf("starting workout: %w", err)
	}
	return &detail, nil
}

// GetActive returns the caller's in-progress session, or nil when there is
// none.
func (c *Client) GetActive(ctx context.Context) (*models.SessionDetail, error) {
	var detail *models.SessionDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/active", nil, &detail); err != nil {
		return nil, fmt.Errorf("fetching active workout: %w", err)
	}
	return detail, nil
}

// ListRoutines returns the caller's routines.
func (c *Client) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	var routines []models.Routine
	if err := c.do(ctx, http.MethodGet, "/api/v1/routines", nil, &routines); err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	return routines, nil
}

// Pause suspends the session's workout clock.
func (c *Client) Pause(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error) {
	return c.lifecycle(ctx, sessionID, "pause")
}

// Resume restarts a paused session.
func (c *Client) Resume(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error) {
	return c.lifecycle(ctx, sessionID, "resume")
}

// Complete finalizes the session.
func (c *Client) Complete(ctx context.Context, sessionID uuid.UUID, notes *string) (*models.SessionDetail, error) {
	var body any
	if notes != nil {
		body = map[string]any{"notes": *notes}
	}
	var detail models.SessionDetail
	path := fmt.Sprintf("/api/v1/workouts/%s/complete", sessionID)
	if err := c.do(ctx, http.MethodPost, path, body, &detail); err != nil {
		return nil, fmt.Errorf("completing workout: %w", err)
	}
	return &detail, nil
}

// Cancel discards the session and its sets.
func (c *Client) Cancel(ctx context.Context, sessionID uuid.UUID) (*models.SessionDetail, error) {
	return c.lifecycle(ctx, sessionID, "cancel")
}

// Heartbeat reports the session is still live.
func (c *Client) Heartbeat(ctx context.Context, sessionID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/workouts/%s/heartbeat", sessionID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// AddSet logs a set against the session.
func (c *Client) AddSet(ctx context.Context, sessionID uuid.UUID, input models.SetInput) (*models.WorkoutSet, error) {
	var set models.WorkoutSet
	path := fmt.Sprintf("/api/v1/workouts/%s/sets", sessionID)
	if err := c.do(ctx, http.MethodPost, path, input, &set); err != nil {
		return nil, fmt.Errorf("adding set: %w", err)
	}
	return &set, nil
}

// UpdateSet patches a set's content fields.
func (c *Client) UpdateSet(ctx context.Context, setID uuid.UUID, patch models.SetPatch) (*models.WorkoutSet, error) {
	var set models.WorkoutSet
	path := fmt.Sprintf("/api/v1/sets/%s", setID)
	if err := c.do(ctx, http.MethodPatch, path, patch, &set); err != nil {
		return nil, fmt.Errorf("updating set: %w", err)
	}
	return &set, nil
}

// DeleteSet removes a set.
func (c *Client) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/sets/%s", setID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) lifecycle(ctx context.Context, sessionID uuid.UUID, action string) (*models.SessionDetail, error) {
	var detail models.SessionDetail
	path := fmt.Sprintf("/api/v1/workouts/%s/%s", sessionID, action)
	if err := c.do(ctx, http.MethodPost, path, nil, &detail); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return &detail, nil
}

// do runs one request and decodes the response into out (when non-nil).
// Error statuses map back onto the shared sentinels so callers can branch on
// them the same way server-side code does.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, payload)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	detail := ""
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		detail = ": " + payload.Error
	}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w%s", models.ErrUnauthorized, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w%s", models.ErrNotFound, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w%s", models.ErrInvalidState, detail)
	default:
		return fmt.Errorf("server returned %d%s", status, detail)
	}
}
