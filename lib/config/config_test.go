// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Store.MaxRecords != 100 {
		t.Errorf("expected max_records=100, got %d", cfg.Store.MaxRecords)
	}
	if cfg.Store.MaxLineLength != 255 {
		t.Errorf("expected max_line_length=255, got %d", cfg.Store.MaxLineLength)
	}
	if cfg.Store.MaxBytes != 0 || cfg.Store.UnboundedFront {
		t.Errorf("expected no byte budget and bounded front, got %+v", cfg.Store)
	}
	if cfg.Mount.FileName != "list" || cfg.Mount.Mountpoint != "" {
		t.Errorf("unexpected mount defaults: %+v", cfg.Mount)
	}
	if cfg.Socket.MaxHandles != 64 {
		t.Errorf("expected max_handles=64, got %d", cfg.Socket.MaxHandles)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestDefaultExpand(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	cfg := Default()
	cfg.Expand()
	if cfg.Socket.Path != "/run/user/1000/listdev.sock" {
		t.Errorf("socket path = %q", cfg.Socket.Path)
	}

	t.Setenv("XDG_RUNTIME_DIR", "")
	cfg = Default()
	cfg.Expand()
	if cfg.Socket.Path != "/tmp/listdev.sock" {
		t.Errorf("socket path without XDG_RUNTIME_DIR = %q", cfg.Socket.Path)
	}
}

func TestLoad_RequiresListdevConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when LISTDEV_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "LISTDEV_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithListdevConfig(t *testing.T) {
	path := writeConfig(t, "listdev.yaml", `
environment: production
store:
  max_records: 10
socket:
  path: /run/listdev/control.sock
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s", cfg.Environment)
	}
	if cfg.Store.MaxRecords != 10 {
		t.Errorf("expected max_records=10, got %d", cfg.Store.MaxRecords)
	}
	if cfg.Socket.Path != "/run/listdev/control.sock" {
		t.Errorf("expected socket path from file, got %s", cfg.Socket.Path)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Store.MaxLineLength != 255 {
		t.Errorf("expected default max_line_length, got %d", cfg.Store.MaxLineLength)
	}
	// Production with no section gets quieter logging.
	if cfg.Log.Level != "warn" {
		t.Errorf("expected production log level warn, got %s", cfg.Log.Level)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "listdev.jsonc", `{
	// Small list for the demo box.
	"store": {
		"max_records": 5,
		"unbounded_front": true,
	},
	/* block comments too */
	"log": {"format": "text"},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.MaxRecords != 5 || !cfg.Store.UnboundedFront {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Log.Format != "text" || cfg.Log.Level != "info" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile on a missing file succeeded")
	}

	path := writeConfig(t, "broken.yaml", "store: [not, a, map\n")
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile on malformed YAML succeeded")
	}

	path = writeConfig(t, "broken.json", `{"store": `)
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile on malformed JSON succeeded")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "listdev.yaml", `
environment: development
store:
  max_records: 100
  unbounded_front: true
mount:
  mountpoint: /mnt/base
development:
  store:
    max_records: 3
    unbounded_front: false
  mount:
    mountpoint: /mnt/dev
    allow_other: true
  log:
    level: debug
production:
  store:
    max_records: 1000
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.MaxRecords != 3 {
		t.Errorf("expected development max_records=3, got %d", cfg.Store.MaxRecords)
	}
	if cfg.Store.UnboundedFront {
		t.Error("explicit false override did not apply")
	}
	if cfg.Mount.Mountpoint != "/mnt/dev" || !cfg.Mount.AllowOther {
		t.Errorf("mount = %+v", cfg.Mount)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("LISTDEV_TEST_DIR", "")
	path := writeConfig(t, "listdev.yaml", `
mount:
  mountpoint: ${HOME}/listdev
socket:
  path: ${LISTDEV_TEST_DIR:-/var/run}/listdev.sock
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Mount.Mountpoint != "/home/tester/listdev" {
		t.Errorf("mountpoint = %q", cfg.Mount.Mountpoint)
	}
	if cfg.Socket.Path != "/var/run/listdev.sock" {
		t.Errorf("socket path = %q", cfg.Socket.Path)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("LISTDEV_TEST_ROOT", "/srv")
	tests := []struct {
		input string
		want  string
	}{
		{"${LISTDEV_TEST_ROOT}/list", "/srv/list"},
		{"${LISTDEV_TEST_UNSET_VAR:-/fallback}/x", "/fallback/x"},
		{"${LISTDEV_TEST_UNSET_VAR}/x", "/x"},
		{"/plain/path", "/plain/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHandleIdleTimeout(t *testing.T) {
	cfg := Default()
	timeout, err := cfg.HandleIdleTimeout()
	if err != nil {
		t.Fatalf("HandleIdleTimeout: %v", err)
	}
	if timeout != 10*time.Minute {
		t.Errorf("timeout = %v, want 10m", timeout)
	}

	cfg.Socket.HandleIdleTimeout = "soon"
	if _, err := cfg.HandleIdleTimeout(); err == nil {
		t.Error("HandleIdleTimeout accepted \"soon\"")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "bad environment", modify: func(c *Config) { c.Environment = "staging" }, wantErr: "invalid environment"},
		{name: "zero records", modify: func(c *Config) { c.Store.MaxRecords = 0 }, wantErr: "store.max_records"},
		{name: "short lines", modify: func(c *Config) { c.Store.MaxLineLength = 6 }, wantErr: "store.max_line_length"},
		{name: "negative budget", modify: func(c *Config) { c.Store.MaxBytes = -1 }, wantErr: "store.max_bytes"},
		{name: "file name with slash", modify: func(c *Config) {
			c.Mount.Mountpoint = "/mnt"
			c.Mount.FileName = "a/b"
		}, wantErr: "mount.file_name"},
		{name: "empty socket path", modify: func(c *Config) { c.Socket.Path = "" }, wantErr: "socket.path"},
		{name: "zero handles", modify: func(c *Config) { c.Socket.MaxHandles = 0 }, wantErr: "socket.max_handles"},
		{name: "bad idle timeout", modify: func(c *Config) { c.Socket.HandleIdleTimeout = "-1s" }, wantErr: "socket.handle_idle_timeout"},
		{name: "bad log level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad log format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryError(t *testing.T) {
	cfg := Default()
	cfg.Store.MaxRecords = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() succeeded")
	}
	for _, want := range []string{"store.max_records", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
