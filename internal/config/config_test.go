package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIGTUI_ACCOUNT", "+1999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "+1999", cfg.Account)
	assert.Equal(t, "signal-cli", cfg.SignalCLI)
	assert.True(t, cfg.Notifications)
	assert.False(t, cfg.AutoReveal)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.AttachmentsDir)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
account: "+1555"
signal_cli: /opt/signal-cli/bin/signal-cli
attachments_dir: /tmp/att
notifications: false
auto_reveal: true
logging:
  debug_mode: true
  level: debug
  categories:
    rpc: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "+1555", cfg.Account)
	assert.Equal(t, "/opt/signal-cli/bin/signal-cli", cfg.SignalCLI)
	assert.Equal(t, "/tmp/att", cfg.AttachmentsDir)
	assert.False(t, cfg.Notifications)
	assert.True(t, cfg.AutoReveal)
	assert.True(t, cfg.Logging.DebugMode)
	assert.True(t, cfg.Logging.Categories["rpc"])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
account: "+1555"
signal_cli: from-file
`)
	t.Setenv("SIGTUI_ACCOUNT", "+1777")
	t.Setenv("SIGTUI_SIGNAL_CLI", "from-env")
	t.Setenv("SIGTUI_ATTACHMENTS_DIR", "/env/att")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "+1777", cfg.Account)
	assert.Equal(t, "from-env", cfg.SignalCLI)
	assert.Equal(t, "/env/att", cfg.AttachmentsDir)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing account", `signal_cli: signal-cli`, "no account configured"},
		{"account without plus", `account: "1555"`, "E.164"},
		{"empty signal_cli", "account: \"+1555\"\nsignal_cli: \"\"", "signal_cli"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SIGTUI_ACCOUNT", "")
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "account: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestDaemonArgs(t *testing.T) {
	cfg := &Config{Account: "+1555"}
	assert.Equal(t, []string{"-a", "+1555", "--output=json", "jsonRpc"}, cfg.DaemonArgs())
}
