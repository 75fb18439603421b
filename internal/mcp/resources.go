package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/liftlog/internal/analytics"
)

const recentWorkoutsResourceLimit = 10

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exercises)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.RecentWorkouts(ctx, recentWorkoutsResourceLimit)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, workouts)
}

// recommendations leaves out exercises without enough history.
func (h *handlers) recommendations(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	all, err := h.ds.Progressions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ProgressionResult, 0, len(all))
	for _, p := range all {
		if p.Status != analytics.StatusInsufficientData {
			out = append(out, p)
		}
	}
	return jsonResource(req.Params.URI, out)
}
