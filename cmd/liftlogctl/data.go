package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/ingest/alpha"
)

func newExportCmd(configPath *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of all exercises and workouts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				if outPath == "" || outPath == "-" {
					return a.repo.WriteExport(cmd.OutOrStdout())
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				if err := a.repo.WriteExport(f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing %s: %w", outPath, err)
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d exercises and %d workouts to %s\n",
					len(a.repo.Exercises()), len(a.repo.Workouts()), outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty or -)")
	return cmd
}

func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Replace all data with the contents of a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				info, err := a.repo.Import(ctx, f)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d exercises and %d workouts", info.Exercises, info.Workouts)
				if info.Migrated {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), " (migrated from an older schema)")
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func newIngestCmd(configPath *string) *cobra.Command {
	ingest := &cobra.Command{Use: "ingest", Short: "Import workouts from other training apps"}

	ingest.AddCommand(&cobra.Command{
		Use:   "alpha <export.csv>",
		Short: "Import an Alpha Progression CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			return withApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				res, err := alpha.NewProvider(a.repo, a.log).Ingest(ctx, f)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "sessions: %d\nworkouts: %d new, %d updated\nsets: %d received, %d imported, %d skipped\n",
					res.SessionsReceived, res.WorkoutsInserted, res.WorkoutsUpdated,
					res.SetsReceived, res.SetsInserted, res.SetsSkipped)
				for _, name := range res.ExercisesCreated {
					_, _ = fmt.Fprintf(out, "new exercise: %s\n", name)
				}
				return nil
			})
		},
	})
	return ingest
}
