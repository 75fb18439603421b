package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/analytics"
	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
	"github.com/meltforce/liftlog/internal/storage"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "liftlogctl",
		Short:         "Manage a LiftLog training log from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (env overrides only when empty)")

	root.AddCommand(newExerciseCmd(&configPath))
	root.AddCommand(newWorkoutCmd(&configPath))
	root.AddCommand(newStatsCmd(&configPath))
	root.AddCommand(newProgressionCmd(&configPath))
	root.AddCommand(newChartCmd(&configPath))
	root.AddCommand(newOneRepMaxCmd())
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newImportCmd(&configPath))
	root.AddCommand(newIngestCmd(&configPath))
	root.AddCommand(newPushCmd())
	root.AddCommand(newMCPCmd(&configPath))
	return root
}

// app is one command's view of the log: the repository loaded from the
// configured store plus an engine over it.
type app struct {
	store  storage.Backend
	repo   *repository.Repository
	engine *analytics.Engine
	log    *slog.Logger
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	repo := repository.New(store)
	if _, err := repo.Load(ctx); err != nil {
		var pe *repository.PersistenceError
		if !errors.As(err, &pe) || pe.Op != "save" {
			store.Close()
			return nil, err
		}
		log.Warn("loaded data but could not save it back", "error", err)
	}
	return &app{store: store, repo: repo, engine: analytics.NewEngine(repo), log: log}, nil
}

func (a *app) Close() error { return a.store.Close() }

// withApp runs fn against a freshly loaded app and closes it afterwards.
func withApp(cmd *cobra.Command, configPath string, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := loadApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// resolveExercise finds an exercise by id first, then by name.
func (a *app) resolveExercise(ref string) (models.Exercise, error) {
	if ex, ok := a.repo.Exercise(ref); ok {
		return ex, nil
	}
	if ex, ok := a.repo.ExerciseByName(ref); ok {
		return ex, nil
	}
	return models.Exercise{}, fmt.Errorf("%w: %q", repository.ErrNotFound, ref)
}

// parseSet reads a set written as WEIGHTxREPS, e.g. "102.5x5". A trailing
// "!" marks the set as not completed. Commas are accepted as decimal marks.
func parseSet(s string) (models.Set, error) {
	s = strings.TrimSpace(s)
	completed := true
	if rest, ok := strings.CutSuffix(s, "!"); ok {
		s, completed = rest, false
	}
	w, r, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return models.Set{}, fmt.Errorf("set %q: want WEIGHTxREPS", s)
	}
	weight, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(w), ",", "."), 64)
	if err != nil {
		return models.Set{}, fmt.Errorf("set %q: bad weight: %w", s, err)
	}
	reps, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return models.Set{}, fmt.Errorf("set %q: bad reps: %w", s, err)
	}
	return models.Set{Weight: weight, Reps: reps, Completed: completed}, nil
}

func formatSets(sets []models.Set) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = strconv.FormatFloat(s.Weight, 'f', -1, 64) + "x" + strconv.Itoa(s.Reps)
		if !s.Completed {
			parts[i] += "!"
		}
	}
	return strings.Join(parts, " ")
}
