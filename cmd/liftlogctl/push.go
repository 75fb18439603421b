package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/upload"
)

func newPushCmd() *cobra.Command {
	var serverURL, apiKey, stateDir string
	var dryRun, verbose bool

	cmd := &cobra.Command{
		Use:   "push <dir>",
		Short: "Send new Alpha Progression exports in a folder to a liftlog server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" && !dryRun {
				return fmt.Errorf("--server is required (or use --dry-run)")
			}
			if apiKey == "" {
				apiKey = os.Getenv("LIFTLOG_AUTH_API_KEY")
			}
			if stateDir == "" {
				dir, err := os.UserConfigDir()
				if err != nil {
					return fmt.Errorf("locating state dir: %w", err)
				}
				stateDir = filepath.Join(dir, "liftlog")
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			state, err := upload.OpenStateDB(stateDir)
			if err != nil {
				return err
			}
			defer state.Close()

			u := upload.New(upload.NewClient(serverURL, apiKey), state, args[0], dryRun, log)
			stats, err := u.Run(cmd.Context())

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "files: %d total, %d sent, %d unchanged, %d failed\n",
				stats.FilesTotal, stats.FilesUploaded, stats.FilesSkipped, stats.FilesErrored)
			_, _ = fmt.Fprintf(out, "sessions: %d\nworkouts: %d new, %d updated\n",
				stats.SessionsSent, stats.WorkoutsInserted, stats.WorkoutsUpdated)
			for _, name := range stats.ExercisesCreated {
				_, _ = fmt.Fprintf(out, "new exercise: %s\n", name)
			}
			for _, w := range stats.Warnings {
				_, _ = fmt.Fprintf(out, "warning: %s\n", w)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "liftlog server URL, e.g. http://liftlog.tailnet")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for write endpoints (default $LIFTLOG_AUTH_API_KEY)")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "where to remember pushed files (default user config dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and count without sending")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every file")
	return cmd
}
