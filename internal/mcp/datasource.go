package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListRoutines(ctx context.Context, userID int) ([]models.Routine, error)
	GetRoutineWithHistory(ctx context.Context, viewerID int, routineID uuid.UUID) (*models.RoutineWithHistory, error)
	GetExerciseHistory(ctx context.Context, viewerID int, routineID uuid.UUID, exerciseID string, limit int) (*models.ExerciseHistory, error)
	GetExercisePRs(ctx context.Context, userID int, exerciseID string) (*models.ExercisePRs, error)
	SessionHistory(ctx context.Context, userID int, status *models.SessionStatus, limit int) ([]models.SessionSummary, error)
	RecentSessions(ctx context.Context, userID, limit int) ([]models.SessionSummary, error)
	GetActiveSession(ctx context.Context, userID int) (*models.SessionDetail, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
