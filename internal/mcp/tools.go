package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("List the user's workout routines with their exercise lists, visibility, and how often each has been performed."),
)

var toolGetRoutineHistory = mcp.NewTool("get_routine_history",
	mcp.WithDescription("Get a routine with per-exercise performance summaries: best weight, best reps, and last-performed data drawn from recent sets."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Get one exercise's full set history within a routine, grouped by workout session, most recent first."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier within the routine")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sets to return. Defaults to 100.")),
)

var toolGetExercisePRs = mcp.NewTool("get_exercise_prs",
	mcp.WithDescription("Get all-time personal records for an exercise: max weight, max reps, and max volume (weight × reps), each with the set that achieved it."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("List past workout sessions with routine info and set counts, most recent first."),
	mcp.WithString("status", mcp.Description("Filter by session status"), mcp.Enum("active", "paused", "completed", "cancelled")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to 20.")),
)

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Get the user's in-progress workout session with its logged sets, or null when no workout is running."),
)

// --- Tool handlers ---

func (h *handlers) listRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	routines, err := h.ds.ListRoutines(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(routines)
}

func (h *handlers) getRoutineHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routineID, res := requireUUID(req, "routine_id")
	if res != nil {
		return res, nil
	}
	uid := UserIDFromContext(ctx)
	history, err := h.ds.GetRoutineWithHistory(ctx, uid, routineID)
	if err != nil {
		h.log.Error("mcp get_routine_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(history)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routineID, res := requireUUID(req, "routine_id")
	if res != nil {
		return res, nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	limit := req.GetInt("limit", 100)

	uid := UserIDFromContext(ctx)
	history, err := h.ds.GetExerciseHistory(ctx, uid, routineID, exerciseID, limit)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(history)
}

func (h *handlers) getExercisePRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	uid := UserIDFromContext(ctx)
	prs, err := h.ds.GetExercisePRs(ctx, uid, exerciseID)
	if err != nil {
		h.log.Error("mcp get_exercise_prs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(prs)
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status *models.SessionStatus
	if raw := req.GetString("status", ""); raw != "" {
		parsed, err := models.ParseSessionStatus(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid status: " + err.Error()), nil
		}
		status = &parsed
	}
	limit := req.GetInt("limit", 20)

	uid := UserIDFromContext(ctx)
	sessions, err := h.ds.SessionHistory(ctx, uid, status, limit)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(sessions)
}

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	detail, err := h.ds.GetActiveSession(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(detail)
}

func requireUUID(req mcp.CallToolRequest, param string) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString(param)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(param + " parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(param + " must be a UUID")
	}
	return id, nil
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
