// Arena-play runs a local single-user arena session in the current
// terminal, without a server. It drives the same menus and verification
// flow as arena-server, but menu selection wraps around at the edges.
//
// Usage:
//
//	arena-play
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pokearena/arena/internal/config"
	"github.com/pokearena/arena/internal/logging"
	"github.com/pokearena/arena/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "arena-play",
	Short: "Local single-user arena session",
	Long: `Play a local arena session in the current terminal.

Without an SMTP relay in the config file, verification codes are shown
on screen instead of being emailed (practice mode).`,
	Version: version.Version,
	RunE:    runPlay,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: standard config directory)")
	rootCmd.AddCommand(versionCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	// Logging defaults to silent so zap output cannot corrupt the TUI
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}

	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return runTUI(cfg)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arena-play %s (commit: %s)\n", version.Version, version.Commit)
	},
}
