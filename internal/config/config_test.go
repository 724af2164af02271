package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "arena") {
		t.Errorf("GetConfigDir() = %v, should contain 'arena'", configDir)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.SSH.Port != 2222 {
		t.Errorf("SSH.Port = %d, want 2222", cfg.SSH.Port)
	}
	if cfg.Session.OutboundBuffer <= 0 {
		t.Errorf("Session.OutboundBuffer = %d, want > 0", cfg.Session.OutboundBuffer)
	}
	if cfg.Session.WrapSelection {
		t.Error("Session.WrapSelection = true, server default should clamp")
	}
	if cfg.Web.Enabled {
		t.Error("Web.Enabled = true, want disabled by default")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		verify  func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			yaml: `version: 1
ssh:
  host: 127.0.0.1
  port: 2022
web:
  enabled: true
  host: 127.0.0.1
  port: 9090
session:
  outbound_buffer: 16
  wrap_selection: true
advertise: true
`,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.SSH.Port != 2022 {
					t.Errorf("SSH.Port = %d, want 2022", cfg.SSH.Port)
				}
				if !cfg.Web.Enabled {
					t.Error("Web.Enabled = false, want true")
				}
				if cfg.Session.OutboundBuffer != 16 {
					t.Errorf("OutboundBuffer = %d, want 16", cfg.Session.OutboundBuffer)
				}
				if !cfg.Session.WrapSelection {
					t.Error("WrapSelection = false, want true")
				}
				if !cfg.Advertise {
					t.Error("Advertise = false, want true")
				}
			},
		},
		{
			name: "zero outbound buffer falls back to default",
			yaml: `version: 1
session:
  outbound_buffer: 0
`,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Session.OutboundBuffer != Default().Session.OutboundBuffer {
					t.Errorf("OutboundBuffer = %d, want default %d",
						cfg.Session.OutboundBuffer, Default().Session.OutboundBuffer)
				}
			},
		},
		{
			name:    "unsupported version",
			yaml:    "version: 99\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "version: [not a scalar\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0600); err != nil {
				t.Fatalf("write config: %v", err)
			}

			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.verify != nil {
				tt.verify(t, cfg)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SSH.Port != Default().SSH.Port {
		t.Errorf("SSH.Port = %d, want default %d", cfg.SSH.Port, Default().SSH.Port)
	}
}
