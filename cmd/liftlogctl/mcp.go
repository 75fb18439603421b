package main

import (
	"context"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/meltforce/liftlog/internal/mcp"
)

func newMCPCmd(configPath *string) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the LiftLog MCP tools over stdio",
		Long: "Serve the LiftLog MCP tools over stdio for desktop assistants.\n" +
			"With --remote the tools read from a running liftlog server instead of the local store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote != "" {
				log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
				return mcpserver.ServeStdio(mcp.New(mcp.NewHTTPClient(remote), Version, log))
			}
			return withApp(cmd, *configPath, func(_ context.Context, a *app) error {
				return mcpserver.ServeStdio(mcp.New(mcp.NewLocal(a.repo, a.engine), Version, a.log))
			})
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a liftlog server, e.g. http://liftlog.tailnet:80")
	return cmd
}
