package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but data
// lives on the remote server. The userID arguments are ignored: the server
// resolves identity from the Tailscale connection.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListRoutines(ctx context.Context, userID int) ([]models.Routine, error) {
	body, err := c.get(ctx, "/api/v1/routines", nil)
	if err != nil {
		return nil, err
	}
	var routines []models.Routine
	if err := json.Unmarshal(body, &routines); err != nil {
		return nil, fmt.Errorf("httpclient: decode routines: %w", err)
	}
	return routines, nil
}

func (c *HTTPClient) GetRoutineWithHistory(ctx context.Context, viewerID int, routineID uuid.UUID) (*models.RoutineWithHistory, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/routines/%s/history", routineID), nil)
	if err != nil {
		return nil, err
	}
	var history models.RoutineWithHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("httpclient: decode routine history: %w", err)
	}
	return &history, nil
}

func (c *HTTPClient) GetExerciseHistory(ctx context.Context, viewerID int, routineID uuid.UUID, exerciseID string, limit int) (*models.ExerciseHistory, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := fmt.Sprintf("/api/v1/routines/%s/exercises/%s/history", routineID, url.PathEscape(exerciseID))
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var history models.ExerciseHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise history: %w", err)
	}
	return &history, nil
}

func (c *HTTPClient) GetExercisePRs(ctx context.Context, userID int, exerciseID string) (*models.ExercisePRs, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v1/exercises/%s/prs", url.PathEscape(exerciseID)), nil)
	if err != nil {
		return nil, err
	}
	var prs models.ExercisePRs
	if err := json.Unmarshal(body, &prs); err != nil {
		return nil, fmt.Errorf("httpclient: decode prs: %w", err)
	}
	return &prs, nil
}

func (c *HTTPClient) SessionHistory(ctx context.Context, userID int, status *models.SessionStatus, limit int) ([]models.SessionSummary, error) {
	params := url.Values{}
	if status != nil {
		params.Set("status", string(*status))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/api/v1/workouts/history", params)
	if err != nil {
		return nil, err
	}
	var sessions []models.SessionSummary
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) RecentSessions(ctx context.Context, userID, limit int) ([]models.SessionSummary, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/api/v1/workouts/recent", params)
	if err != nil {
		return nil, err
	}
	var sessions []models.SessionSummary
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode recent: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) GetActiveSession(ctx context.Context, userID int) (*models.SessionDetail, error) {
	body, err := c.get(ctx, "/api/v1/workouts/active", nil)
	if err != nil {
		return nil, err
	}
	var detail *models.SessionDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode active workout: %w", err)
	}
	return detail, nil
}
