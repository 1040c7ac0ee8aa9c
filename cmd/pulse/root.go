// ABOUTME: Root Cobra command for the pulse CLI.
// ABOUTME: Loads config, initialises logging, and manages the store lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/config"
	"github.com/harperreed/pulse/internal/engine"
	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/storage"
)

var (
	cfg        *config.Config
	repo       *storage.DB
	engineOpts engine.Options

	dbPathFlag string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Wearable strap history: sleep, naps, exercise and stress",
	Long: `Pulse turns the history a heart-rate strap uploads into sleep cycles,
naps, exercise sessions and stress scores.

WORKFLOW:

  $ pulse import capture.jsonl    # Log and decode packets from a capture
  $ pulse detect                  # Commit sleep cycles, naps and exercise
  $ pulse stress                  # Score stress for new samples
  $ pulse sleep list              # Review recent nights
  $ pulse sleep stats             # Consistency over all nights and the last week

MAINTENANCE:

  $ pulse rerun                   # Decode the whole packet log again
  $ pulse merge other.db          # Pull in another database's packets and samples
  $ pulse export json -o out.json # Export committed records
  $ pulse sync push               # Mirror committed records into the local KV store

MCP INTEGRATION:

  Run 'pulse mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "pulse": { "command": "pulse", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Settings are read from ~/.config/pulse/config.json, then from a .env
  file in the working directory, then from PULSE_* environment variables.

DATA STORAGE:

  Packets, samples and committed records live in SQLite at
  ~/.local/share/pulse/pulse.db unless data_dir says otherwise.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := log.Init(cfg.Debug || debugFlag); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		engineOpts, err = cfg.Engine()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		dbPath := cfg.GetDBPath()
		if dbPathFlag != "" {
			dbPath = config.ExpandPath(dbPathFlag)
		}
		repo, err = storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		log.Sync()
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "database path (default: <data_dir>/pulse.db)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}
