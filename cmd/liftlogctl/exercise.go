package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/repository"
)

func newExerciseCmd(configPath *string) *cobra.Command {
	exercise := &cobra.Command{Use: "exercise", Short: "Exercise catalog commands"}

	var exType, muscle, equipment string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an exercise to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				ex, err := a.repo.AddExercise(ctx, repository.ExerciseInput{
					Name:        args[0],
					Type:        models.ExerciseType(exType),
					MuscleGroup: models.MuscleGroup(muscle),
					Equipment:   models.Equipment(equipment),
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", ex.Name, ex.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&exType, "type", "", "strength|hypertrophy|accessory|warmup (default strength)")
	add.Flags().StringVar(&muscle, "muscle", "", "chest|back|legs|shoulders|arms|core (default chest)")
	add.Flags().StringVar(&equipment, "equipment", "", "barbell|dumbbell|cable|machine|bodyweight (inferred from the name when empty)")

	var muscleFilter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the exercise catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				n := 0
				for _, ex := range a.repo.Exercises() {
					if muscleFilter != "" && string(ex.MuscleGroup) != muscleFilter {
						continue
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ex.ID, ex.Name, ex.Type, ex.MuscleGroup, ex.Equipment)
					n++
				}
				if n == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exercises")
					return nil
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().StringVar(&muscleFilter, "muscle", "", "only list this muscle group")

	rm := &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Remove an exercise and all of its workouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				ex, err := a.resolveExercise(args[0])
				if err != nil {
					return err
				}
				dropped := len(a.repo.WorkoutsFor(ex.ID))
				if _, err := a.repo.RemoveExercise(ctx, ex.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s and %d workouts\n", ex.Name, dropped)
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id|name> <new-name>",
		Short: "Rename an exercise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				ex, err := a.resolveExercise(args[0])
				if err != nil {
					return err
				}
				updated, err := a.repo.UpdateExercise(ctx, ex.ID, repository.ExerciseInput{
					Name:        args[1],
					Type:        ex.Type,
					MuscleGroup: ex.MuscleGroup,
					Equipment:   ex.Equipment,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", ex.Name, updated.Name)
				return nil
			})
		},
	}

	exercise.AddCommand(add, list, rm, rename)
	return exercise
}
