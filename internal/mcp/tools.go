package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftlog/internal/analytics"
	"github.com/meltforce/liftlog/internal/models"
)

var errNoSuchExercise = errors.New("no such exercise")

// resolveExercise finds an exercise by id, then by name ignoring case.
func (h *handlers) resolveExercise(ctx context.Context, ref string) (models.Exercise, error) {
	ref = strings.TrimSpace(ref)
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		return models.Exercise{}, err
	}
	for _, ex := range exercises {
		if ex.ID == ref {
			return ex, nil
		}
	}
	for _, ex := range exercises {
		if ex.SameName(ref) {
			return ex, nil
		}
	}
	return models.Exercise{}, fmt.Errorf("%w: %q", errNoSuchExercise, ref)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List all exercises in the catalog with id, name, type, muscle group and equipment."),
	mcp.WithString("muscle_group", mcp.Description("Only exercises for this muscle group."),
		mcp.Enum("chest", "back", "legs", "shoulders", "arms", "core")),
)

var toolGetGeneralStats = mcp.NewTool("get_general_stats",
	mcp.WithDescription("Dashboard summary: total workouts, heaviest lift, average progress, workouts per week, total and average volume, and max-weight progress over the last 30 days."),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("First-to-last max-weight change in percent for every exercise."),
)

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Progression recommendation (increase, maintain, decrease, increase-volume) from the two most recent workouts. Omit exercise to get every exercise."),
	mcp.WithString("exercise", mcp.Description("Exercise id or name")),
)

var toolGetExerciseStats = mcp.NewTool("get_exercise_stats",
	mcp.WithDescription("Detail statistics for one exercise: sessions, max weight, average volume, 30-day progress, best estimated 1RM and its progression verdict."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id or name")),
)

var toolGetChartSeries = mcp.NewTool("get_chart_series",
	mcp.WithDescription("Per-workout data points for one exercise, oldest first."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id or name")),
	mcp.WithString("metric", mcp.Description("Value per workout. Defaults to weight."),
		mcp.Enum(string(analytics.MetricWeight), string(analytics.MetricVolume), string(analytics.MetricReps), string(analytics.MetricOneRepMax))),
	mcp.WithString("window", mcp.Description("Trailing period. Defaults to all."),
		mcp.Enum(string(analytics.WindowAll), string(analytics.WindowMonth), string(analytics.Window3Months), string(analytics.Window6Months))),
)

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("Most recent workouts, newest first, with relative dates like 'yesterday' or '2 weeks ago'."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts. Defaults to 5.")),
)

var toolEstimateOneRepMax = mcp.NewTool("estimate_one_rep_max",
	mcp.WithDescription("Estimate the one-repetition maximum from a set using the Epley formula."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight lifted in kg")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetitions performed")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if group := models.MuscleGroup(req.GetString("muscle_group", "")); group != "" {
		filtered := exercises[:0]
		for _, ex := range exercises {
			if ex.MuscleGroup == group {
				filtered = append(filtered, ex)
			}
		}
		exercises = filtered
	}
	return jsonResult(exercises)
}

func (h *handlers) getGeneralStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GeneralStats(ctx)
	if err != nil {
		h.log.Error("mcp get_general_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getExerciseProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	progress, err := h.ds.ExerciseProgress(ctx)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(progress)
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := req.GetString("exercise", "")
	if ref == "" {
		all, err := h.ds.Progressions(ctx)
		if err != nil {
			h.log.Error("mcp get_progression", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		return jsonResult(all)
	}

	ex, err := h.resolveExercise(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.ds.Progression(ctx, ex.ID)
	if err != nil {
		h.log.Error("mcp get_progression", "exercise", ex.ID, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) getExerciseStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	ex, err := h.resolveExercise(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stats, err := h.ds.ExerciseStats(ctx, ex.ID)
	if err != nil {
		h.log.Error("mcp get_exercise_stats", "exercise", ex.ID, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getChartSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	metric := analytics.Metric(req.GetString("metric", string(analytics.MetricWeight)))
	if err := metric.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	window := analytics.Window(req.GetString("window", string(analytics.WindowAll)))
	if err := window.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ex, err := h.resolveExercise(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	series, err := h.ds.ChartSeries(ctx, ex.ID, metric, window)
	if err != nil {
		h.log.Error("mcp get_chart_series", "exercise", ex.ID, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if series.Empty() {
		return mcp.NewToolResultText(fmt.Sprintf("No %s workouts in window %q.", ex.Name, window)), nil
	}
	return jsonResult(series)
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 5)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}
	recent, err := h.ds.RecentWorkouts(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(recent)
}

func (h *handlers) estimateOneRepMax(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil || weight <= 0 {
		return mcp.NewToolResultError("weight must be a positive number"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil || reps <= 0 {
		return mcp.NewToolResultError("reps must be a positive integer"), nil
	}
	return jsonResult(map[string]any{
		"weight":    weight,
		"reps":      reps,
		"oneRepMax": math.Round(analytics.OneRepMax(weight, reps)*10) / 10,
	})
}
