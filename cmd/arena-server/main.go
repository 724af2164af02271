// Arena-server hosts the Pokemon Arena as a multiplexed terminal service.
//
// Clients connect over SSH (or optionally WebSocket) and get their own
// menu-driven session, authenticated by an emailed verification code.
//
// Usage:
//
//	arena-server serve [flags]
//
// See 'arena-server serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pokearena/arena/internal/config"
	"github.com/pokearena/arena/internal/server"
	"github.com/pokearena/arena/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena-server",
	Short: "Pokemon Arena terminal server",
	Long: `A multiplexed terminal server for the Pokemon Arena.

Every SSH connection gets an isolated menu-driven session. Players
authenticate in-session with an emailed verification code; the SSH layer
itself accepts any client.

Note: To play a local single-user session without a server, use the
separate 'arena-play' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	configPath string
	host       string
	port       int
	webPort    int
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena server",
	Long: `Start the arena server and accept client connections.

Configuration is read from the config file (created with defaults on
first save); flags override individual settings for this run. The SSH
host key is generated under the config directory on first start.

To deliver verification codes by email, set the [email] section of the
config file to an SMTP relay. Without one, codes are written to the
server log instead.`,
	Example: `  # Start on the default SSH port 2222
  arena-server serve

  # Custom port with verbose logging
  arena-server serve --port 2200 --log-level debug

  # Also expose the WebSocket endpoint for browser terminals
  arena-server serve --web-port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: standard config directory)")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (overrides config)")
	serveCmd.Flags().IntVar(&port, "port", 0, "SSH port (overrides config)")
	serveCmd.Flags().IntVar(&webPort, "web-port", 0, "Enable the WebSocket endpoint on this port")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	if host != "" {
		cfg.SSH.Host = host
	}
	if port != 0 {
		cfg.SSH.Port = port
	}
	if webPort != 0 {
		cfg.Web.Enabled = true
		cfg.Web.Port = webPort
	}

	srv, err := server.New(cfg, logLevel)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arena-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
