// Package config loads and validates the sigtui configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all sigtui configuration.
type Config struct {
	// Account is the registered signal-cli account (E.164 phone number).
	Account string `yaml:"account"`

	// SignalCLI is the signal-cli executable to spawn. Resolved via PATH
	// when not absolute.
	SignalCLI string `yaml:"signal_cli"`

	// AttachmentsDir is where signal-cli materializes received attachment
	// files. Empty means the signal-cli default location.
	AttachmentsDir string `yaml:"attachments_dir"`

	// Notifications toggles desktop notifications for incoming messages.
	Notifications bool `yaml:"notifications"`

	// AutoReveal opens media entries as they arrive in the focused
	// conversation.
	AutoReveal bool `yaml:"auto_reveal"`

	// Logging configures the category file logger. internal/logging keeps
	// its own mirror of this block to avoid an import cycle.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		SignalCLI:     "signal-cli",
		Notifications: true,
		Logging:       LoggingConfig{Level: "info"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sigtui", "config.yaml")
	}
	return filepath.Join(os.TempDir(), "sigtui", "config.yaml")
}

// StateDir returns the directory for logs and other runtime state.
func StateDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".local", "share", "sigtui")
	}
	return filepath.Join(os.TempDir(), "sigtui")
}

// AttachmentsDirDefault returns signal-cli's own attachment store, used when
// the config does not override it.
func AttachmentsDirDefault() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".local", "share", "signal-cli", "attachments")
	}
	return ""
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error: the
// defaults plus environment must then supply the account.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if cfg.AttachmentsDir == "" {
		cfg.AttachmentsDir = AttachmentsDirDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SIGTUI_ACCOUNT"); v != "" {
		c.Account = v
	}
	if v := os.Getenv("SIGTUI_SIGNAL_CLI"); v != "" {
		c.SignalCLI = v
	}
	if v := os.Getenv("SIGTUI_ATTACHMENTS_DIR"); v != "" {
		c.AttachmentsDir = v
	}
}

// Validate checks the config for the mistakes that would otherwise only
// surface as a dead daemon.
func (c *Config) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("no account configured: set account in the config file, SIGTUI_ACCOUNT, or --account")
	}
	if !strings.HasPrefix(c.Account, "+") {
		return fmt.Errorf("account %q must be an E.164 phone number (leading +)", c.Account)
	}
	if c.SignalCLI == "" {
		return fmt.Errorf("signal_cli must not be empty")
	}
	return nil
}

// DaemonArgs returns the argument vector for spawning signal-cli in
// jsonRpc daemon mode.
func (c *Config) DaemonArgs() []string {
	return []string{"-a", c.Account, "--output=json", "jsonRpc"}
}
