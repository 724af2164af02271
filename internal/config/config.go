package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "arena"
	configFile = "config.yaml"
)

// Config is the on-disk server configuration.
type Config struct {
	// Version is the config schema version (currently 1)
	Version int `yaml:"version"`

	// SSH configures the primary SSH transport
	SSH SSHConfig `yaml:"ssh"`

	// Web configures the optional WebSocket transport
	Web WebConfig `yaml:"web"`

	// Email configures the verification email sender
	Email EmailConfig `yaml:"email"`

	// Session configures per-session behavior
	Session SessionConfig `yaml:"session"`

	// Advertise enables mDNS advertisement of the SSH endpoint on the LAN
	Advertise bool `yaml:"advertise"`
}

// SSHConfig holds SSH listener settings.
type SSHConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// HostKeyPath is where the PEM-encoded host identity key lives.
	// Empty means <config dir>/host_key. Generated on first run, reused after.
	HostKeyPath string `yaml:"host_key_path,omitempty"`
}

// WebConfig holds WebSocket listener settings.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// EmailConfig holds verification email delivery settings.
// When Relay is empty, codes are logged instead of delivered, which keeps
// the server usable without SMTP credentials.
type EmailConfig struct {
	Relay    string `yaml:"relay,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from,omitempty"`
}

// SessionConfig holds per-session tuning knobs.
type SessionConfig struct {
	// OutboundBuffer is the capacity of a session's outbound byte channel.
	// Flushes against a full channel are dropped, never blocked on.
	OutboundBuffer int `yaml:"outbound_buffer"`
	// WrapSelection enables wrap-around menu navigation instead of clamping.
	// The network server defaults to clamping; the single-user local
	// variant enables wrapping.
	WrapSelection bool `yaml:"wrap_selection"`
}

// Default returns a configuration with sensible defaults for a new install.
func Default() *Config {
	return &Config{
		Version: 1,
		SSH: SSHConfig{
			Host: "0.0.0.0",
			Port: 2222,
		},
		Web: WebConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    8080,
		},
		Session: SessionConfig{
			OutboundBuffer: 64,
			WrapSelection:  false,
		},
	}
}

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/arena or $HOME/.config/arena
//   - macOS: $HOME/.config/arena (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\arena
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// ensureConfigDir ensures the configuration directory exists.
func ensureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load reads the configuration from the given path. An empty path means the
// default location. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Config doesn't exist - return defaults
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", cfg.Version)
	}

	if cfg.Session.OutboundBuffer <= 0 {
		cfg.Session.OutboundBuffer = Default().Session.OutboundBuffer
	}

	return cfg, nil
}

// Save writes the configuration to the default location.
// Performs an atomic write to prevent corruption on crash.
func (c *Config) Save() error {
	if err := ensureConfigDir(); err != nil {
		return fmt.Errorf("failed to ensure config directory exists: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Arena Server Configuration File
#
# Security Note: the SMTP password stored here grants send access to your
# relay account. Keep this file private (it is written with mode 0600).
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// HostKeyPath resolves the host key location, defaulting to the config dir.
func (c *Config) HostKeyPath() (string, error) {
	if c.SSH.HostKeyPath != "" {
		return c.SSH.HostKeyPath, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "host_key"), nil
}
