package main

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
)

func newWorkoutCmd(configPath *string) *cobra.Command {
	workout := &cobra.Command{Use: "workout", Short: "Workout log commands"}

	var exercise, date, notes string
	var sets []string
	add := &cobra.Command{
		Use:   "add --exercise <id|name> --set 100x5 [--set ...]",
		Short: "Log a workout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if exercise == "" {
				return fmt.Errorf("--exercise is required")
			}
			parsed := make([]models.Set, 0, len(sets))
			for _, s := range sets {
				set, err := parseSet(s)
				if err != nil {
					return err
				}
				parsed = append(parsed, set)
			}
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				day := models.NewDate(a.repo.Now())
				if date != "" {
					d, err := models.ParseDate(date)
					if err != nil {
						return err
					}
					day = d
				}
				w, err := a.repo.AddWorkout(ctx, repository.WorkoutInput{
					Date:       day,
					ExerciseID: exerciseID(a, exercise),
					Exercise:   exercise,
					Sets:       parsed,
					Notes:      notes,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged %s on %s (%s)\n", w.Exercise, w.Date, w.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&exercise, "exercise", "", "exercise id or name")
	add.Flags().StringVar(&date, "date", "", "workout date YYYY-MM-DD (default today)")
	add.Flags().StringArrayVar(&sets, "set", nil, "set as WEIGHTxREPS, suffix ! for a missed set (repeatable)")
	add.Flags().StringVar(&notes, "notes", "", "free-form notes")

	var filter string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List workouts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				ws := a.repo.Workouts()
				if filter != "" {
					ex, err := a.resolveExercise(filter)
					if err != nil {
						return err
					}
					ws = a.repo.WorkoutsFor(ex.ID)
				}
				slices.SortStableFunc(ws, func(x, y models.Workout) int { return y.Date.Compare(x.Date) })
				if limit > 0 && len(ws) > limit {
					ws = ws[:limit]
				}
				if len(ws) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no workouts")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, w := range ws {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", w.ID, w.Date, w.Exercise, formatSets(w.Sets), w.Notes)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().StringVar(&filter, "exercise", "", "only list this exercise (id or name)")
	list.Flags().IntVar(&limit, "limit", 0, "show at most this many workouts")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				ok, err := a.repo.RemoveWorkout(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("workout %s: %w", args[0], repository.ErrNotFound)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed workout %s\n", args[0])
				return nil
			})
		},
	}

	workout.AddCommand(add, list, rm)
	return workout
}

// exerciseID returns the id when ref names an existing exercise id, so that
// the repository can fall back to matching by name otherwise.
func exerciseID(a *app, ref string) string {
	if _, ok := a.repo.Exercise(ref); ok {
		return ref
	}
	return ""
}
