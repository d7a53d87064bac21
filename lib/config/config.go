// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "LISTDEV_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the configuration for the listdev daemon.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment" json:"environment"`

	// Store sizes the record list.
	Store StoreConfig `yaml:"store" json:"store"`

	// Mount configures the FUSE device file.
	Mount MountConfig `yaml:"mount" json:"mount"`

	// Socket configures the control socket.
	Socket SocketConfig `yaml:"socket" json:"socket"`

	// Log configures the daemon logger.
	Log LogConfig `yaml:"log" json:"log"`

	// Per-environment overrides, applied after the base config.
	Development *ConfigOverrides `yaml:"development,omitempty" json:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// ConfigOverrides holds fields an environment section may override.
// Nil and zero fields leave the base value in place.
type ConfigOverrides struct {
	Store  *StoreOverrides `yaml:"store,omitempty" json:"store,omitempty"`
	Mount  *MountOverrides `yaml:"mount,omitempty" json:"mount,omitempty"`
	Socket *SocketConfig   `yaml:"socket,omitempty" json:"socket,omitempty"`
	Log    *LogConfig      `yaml:"log,omitempty" json:"log,omitempty"`
}

// StoreConfig sizes the record list.
type StoreConfig struct {
	// MaxRecords is the maximum number of records.
	// Default: 100
	MaxRecords int `yaml:"max_records" json:"max_records"`

	// MaxLineLength is the longest accepted command line, terminator
	// included. Record content is one byte shorter.
	// Default: 255
	MaxLineLength int `yaml:"max_line_length" json:"max_line_length"`

	// MaxBytes is the byte budget for the serialized view. Inserts
	// that would exceed it fail with an allocation failure.
	// Default: 0 (no budget)
	MaxBytes int `yaml:"max_bytes" json:"max_bytes"`

	// UnboundedFront exempts ADDF from the record limit.
	// Default: false
	UnboundedFront bool `yaml:"unbounded_front" json:"unbounded_front"`
}

// StoreOverrides is StoreConfig with every field optional.
type StoreOverrides struct {
	MaxRecords     int   `yaml:"max_records,omitempty" json:"max_records,omitempty"`
	MaxLineLength  int   `yaml:"max_line_length,omitempty" json:"max_line_length,omitempty"`
	MaxBytes       int   `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`
	UnboundedFront *bool `yaml:"unbounded_front,omitempty" json:"unbounded_front,omitempty"`
}

// MountConfig configures the FUSE device file.
type MountConfig struct {
	// Mountpoint is the directory the device file appears in. Empty
	// disables the FUSE transport.
	Mountpoint string `yaml:"mountpoint" json:"mountpoint"`

	// AllowOther lets users other than the daemon's open the file.
	// Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other" json:"allow_other"`

	// FileName is the device file's name inside the mountpoint.
	// Default: list
	FileName string `yaml:"file_name" json:"file_name"`
}

// MountOverrides is MountConfig with every field optional.
type MountOverrides struct {
	Mountpoint string `yaml:"mountpoint,omitempty" json:"mountpoint,omitempty"`
	AllowOther *bool  `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
	FileName   string `yaml:"file_name,omitempty" json:"file_name,omitempty"`
}

// SocketConfig configures the control socket.
type SocketConfig struct {
	// Path is the Unix socket path.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/listdev.sock
	Path string `yaml:"path" json:"path"`

	// MaxHandles bounds concurrently open read handles.
	// Default: 64
	MaxHandles int `yaml:"max_handles" json:"max_handles"`

	// HandleIdleTimeout closes a handle nobody has used for this long,
	// in time.ParseDuration format.
	// Default: 10m
	HandleIdleTimeout string `yaml:"handle_idle_timeout" json:"handle_idle_timeout"`
}

// LogConfig configures the daemon logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is json or text.
	// Default: json
	Format string `yaml:"format" json:"format"`
}

// Default returns the base configuration a config file is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Store: StoreConfig{
			MaxRecords:    100,
			MaxLineLength: 255,
		},
		Mount: MountConfig{
			FileName: "list",
		},
		Socket: SocketConfig{
			Path:              "${XDG_RUNTIME_DIR:-/tmp}/listdev.sock",
			MaxHandles:        64,
			HandleIdleTimeout: "10m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from the file named by LISTDEV_CONFIG.
// There is no discovery: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your listdev config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. Files ending in .json or
// .jsonc are read as JSONC (comments and trailing commas allowed);
// anything else is YAML. The result has environment overrides applied
// and ${VAR:-default} references expanded, but is not validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.Expand()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production defaults: quieter logging.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if store := overrides.Store; store != nil {
		if store.MaxRecords != 0 {
			c.Store.MaxRecords = store.MaxRecords
		}
		if store.MaxLineLength != 0 {
			c.Store.MaxLineLength = store.MaxLineLength
		}
		if store.MaxBytes != 0 {
			c.Store.MaxBytes = store.MaxBytes
		}
		if store.UnboundedFront != nil {
			c.Store.UnboundedFront = *store.UnboundedFront
		}
	}

	if mount := overrides.Mount; mount != nil {
		if mount.Mountpoint != "" {
			c.Mount.Mountpoint = mount.Mountpoint
		}
		if mount.AllowOther != nil {
			c.Mount.AllowOther = *mount.AllowOther
		}
		if mount.FileName != "" {
			c.Mount.FileName = mount.FileName
		}
	}

	if socket := overrides.Socket; socket != nil {
		if socket.Path != "" {
			c.Socket.Path = socket.Path
		}
		if socket.MaxHandles != 0 {
			c.Socket.MaxHandles = socket.MaxHandles
		}
		if socket.HandleIdleTimeout != "" {
			c.Socket.HandleIdleTimeout = socket.HandleIdleTimeout
		}
	}

	if log := overrides.Log; log != nil {
		if log.Level != "" {
			c.Log.Level = log.Level
		}
		if log.Format != "" {
			c.Log.Format = log.Format
		}
	}
}

// Expand resolves ${VAR} references in path fields. LoadFile calls it;
// callers running on Default alone call it themselves.
func (c *Config) Expand() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Mount.Mountpoint = expandVars(c.Mount.Mountpoint, vars)
	c.Socket.Path = expandVars(c.Socket.Path, vars)
}

// ExpandPath expands ${VAR} and ${VAR:-default} references in s
// against the process environment. The daemon applies it to
// command-line path overrides so they behave like config values.
func ExpandPath(s string) string {
	return expandVars(s, nil)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// HandleIdleTimeout parses Socket.HandleIdleTimeout.
func (c *Config) HandleIdleTimeout() (time.Duration, error) {
	duration, err := time.ParseDuration(c.Socket.HandleIdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("socket.handle_idle_timeout: %w", err)
	}
	return duration, nil
}

// Validate checks the configuration for errors, reporting every
// problem found rather than the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Store.MaxRecords < 1 {
		errs = append(errs, fmt.Errorf("store.max_records must be at least 1, got %d", c.Store.MaxRecords))
	}
	// The shortest useful line is a verb, a separator, and one byte of
	// content.
	if c.Store.MaxLineLength < 7 {
		errs = append(errs, fmt.Errorf("store.max_line_length must be at least 7, got %d", c.Store.MaxLineLength))
	}
	if c.Store.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("store.max_bytes must not be negative, got %d", c.Store.MaxBytes))
	}

	if c.Mount.Mountpoint != "" {
		if c.Mount.FileName == "" || strings.ContainsRune(c.Mount.FileName, '/') ||
			c.Mount.FileName == "." || c.Mount.FileName == ".." {
			errs = append(errs, fmt.Errorf("mount.file_name %q is not a valid file name", c.Mount.FileName))
		}
	}

	if c.Socket.Path == "" {
		errs = append(errs, fmt.Errorf("socket.path is required"))
	}
	if c.Socket.MaxHandles < 1 {
		errs = append(errs, fmt.Errorf("socket.max_handles must be at least 1, got %d", c.Socket.MaxHandles))
	}
	if timeout, err := c.HandleIdleTimeout(); err != nil {
		errs = append(errs, err)
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("socket.handle_idle_timeout must be positive, got %s", timeout))
	}

	if !contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !contains([]string{"json", "text"}, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
