package mcp

import (
	"context"

	"github.com/meltforce/liftlog/internal/analytics"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
)

// DataSource abstracts the data layer for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Exercises(ctx context.Context) ([]models.Exercise, error)
	GeneralStats(ctx context.Context) (analytics.GeneralStats, error)
	ExerciseProgress(ctx context.Context) ([]analytics.ExerciseProgress, error)
	Progression(ctx context.Context, exerciseID string) (analytics.ProgressionResult, error)
	Progressions(ctx context.Context) ([]analytics.ProgressionResult, error)
	ExerciseStats(ctx context.Context, exerciseID string) (analytics.ExerciseStats, error)
	ChartSeries(ctx context.Context, exerciseID string, metric analytics.Metric, window analytics.Window) (analytics.Series, error)
	RecentWorkouts(ctx context.Context, limit int) ([]analytics.RecentWorkout, error)
}

var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// Local answers from the repository and engine of this process.
type Local struct {
	repo   *repository.Repository
	engine *analytics.Engine
}

func NewLocal(repo *repository.Repository, engine *analytics.Engine) *Local {
	return &Local{repo: repo, engine: engine}
}

func (l *Local) Exercises(context.Context) ([]models.Exercise, error) {
	return l.repo.Exercises(), nil
}

func (l *Local) GeneralStats(context.Context) (analytics.GeneralStats, error) {
	return l.engine.GeneralStats(), nil
}

func (l *Local) ExerciseProgress(context.Context) ([]analytics.ExerciseProgress, error) {
	return l.engine.ExerciseProgress(), nil
}

func (l *Local) Progression(_ context.Context, exerciseID string) (analytics.ProgressionResult, error) {
	return l.engine.Progression(exerciseID)
}

func (l *Local) Progressions(context.Context) ([]analytics.ProgressionResult, error) {
	return l.engine.Progressions(), nil
}

func (l *Local) ExerciseStats(_ context.Context, exerciseID string) (analytics.ExerciseStats, error) {
	return l.engine.ExerciseStats(exerciseID)
}

func (l *Local) ChartSeries(_ context.Context, exerciseID string, metric analytics.Metric, window analytics.Window) (analytics.Series, error) {
	return l.engine.ChartSeries(exerciseID, metric, window)
}

func (l *Local) RecentWorkouts(_ context.Context, limit int) ([]analytics.RecentWorkout, error) {
	return l.engine.RecentWorkouts(limit), nil
}
