// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the pulse store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "pulse": {
        "command": "pulse",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_sleep_cycles   Recent sleep cycles, newest first
  get_latest_sleep    The most recent sleep cycle
  list_activities     Naps and exercise, optionally filtered by type
  detect_events       Commit new sleep cycles, naps and exercise
  calculate_stress    Score stress for new samples

AVAILABLE RESOURCES:

  pulse://sleep/recent        Last 7 sleep cycles
  pulse://activities/recent   Last 20 naps and exercise sessions
  pulse://summary             Latest sleep, weekly stats, and store counts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, engineOpts)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
