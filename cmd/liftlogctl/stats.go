package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/analytics"
)

func newStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [exercise]",
		Short: "Show the overall summary, or the detail for one exercise",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					ex, err := a.resolveExercise(args[0])
					if err != nil {
						return err
					}
					s, err := a.engine.ExerciseStats(ex.ID)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(out, "exercise: %s\nworkouts: %d\nmax weight: %g kg\navg volume: %g kg\n30-day progress: %g%%\nbest 1RM: %g kg\n",
						s.Exercise, s.TotalWorkouts, s.MaxWeight, s.AvgVolume, s.MonthProgress, s.BestOneRepMax)
					_, _ = fmt.Fprintf(out, "recommendation: %s\n", s.Progression.Recommendation)
					return nil
				}

				g := a.engine.GeneralStats()
				_, _ = fmt.Fprintf(out, "workouts: %d\nexercises: %d\n", g.TotalWorkouts, g.TotalExercises)
				if g.BestExercise.Name != "" {
					_, _ = fmt.Fprintf(out, "best lift: %s %g kg\n", g.BestExercise.Name, g.BestExercise.Weight)
				}
				_, _ = fmt.Fprintf(out, "avg progress: %g%%\nrecommendations: %d\ntotal volume: %g kg\navg volume: %g kg\nworkouts/week: %g\n30-day progress: %g%%\n",
					g.AvgProgress, g.Recommendations, g.TotalVolume, g.AvgVolume, g.WorkoutsPerWeek, g.MonthProgress)
				return nil
			})
		},
	}
}

func newProgressionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "progression [exercise]",
		Short: "Show load recommendations for one or all exercises",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				var results []analytics.ProgressionResult
				if len(args) == 1 {
					ex, err := a.resolveExercise(args[0])
					if err != nil {
						return err
					}
					r, err := a.engine.Progression(ex.ID)
					if err != nil {
						return err
					}
					results = append(results, r)
				} else {
					results = a.engine.Progressions()
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exercises")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, r := range results {
					suggested := "-"
					if r.SuggestedWeight != nil {
						suggested = strconv.FormatFloat(*r.SuggestedWeight, 'f', -1, 64) + " kg"
					}
					_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", r.Icon, r.Exercise, r.Status, suggested, r.Recommendation)
				}
				return tw.Flush()
			})
		},
	}
}

func newChartCmd(configPath *string) *cobra.Command {
	var metric, window string
	cmd := &cobra.Command{
		Use:   "chart <exercise>",
		Short: "Print the chart series for an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				ex, err := a.resolveExercise(args[0])
				if err != nil {
					return err
				}
				s, err := a.engine.ChartSeries(ex.ID, analytics.Metric(metric), analytics.Window(window))
				if err != nil {
					return err
				}
				if s.Empty() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no %s workouts in window %q\n", s.Exercise, s.Window)
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, p := range s.Points {
					_, _ = fmt.Fprintf(tw, "%s\t%g\n", p.Label, p.Value)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&metric, "metric", string(analytics.MetricWeight), "weight|volume|reps|one-rep-max")
	cmd.Flags().StringVar(&window, "window", string(analytics.WindowAll), "all|month|3months|6months")
	return cmd
}

func newOneRepMaxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "1rm <weight> <reps>",
		Short: "Estimate a one-rep max with the Epley formula",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("weight: %w", err)
			}
			reps, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("reps: %w", err)
			}
			if weight <= 0 || reps <= 0 {
				return fmt.Errorf("weight and reps must be greater than zero")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.1f kg\n", analytics.OneRepMax(weight, reps))
			return nil
		},
	}
}
