package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhanhRomVN/termi-tool/internal/config"
	"github.com/KhanhRomVN/termi-tool/internal/errclass"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termi-tool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: writeConfig(t, `
version: 0
accounts:
  dir: /tmp/termi-accounts
  use_keyring: true
gemini:
  model: gemini-2.5-pro
rotation:
  cooldown_seconds: 10
  pause_seconds: 2
  max_cycles: 3
`)}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "/tmp/termi-accounts", cfg.AccountsDir())
	assert.True(t, cfg.UseKeyring())
	assert.Equal(t, "gemini-2.5-pro", cfg.Model())
	assert.Equal(t, 10*time.Second, cfg.Cooldown())
	assert.Equal(t, 2*time.Second, cfg.Pause())
	assert.Equal(t, 3, cfg.MaxCycles())
}

func TestLoadEmptyConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: writeConfig(t, "version: 0\n")}
	require.NoError(t, cfg.Load())

	assert.Empty(t, cfg.Model())
	assert.Empty(t, cfg.AccountsDir())
	assert.False(t, cfg.UseKeyring())
	assert.Zero(t, cfg.Cooldown())
	assert.Zero(t, cfg.Pause())
	assert.Zero(t, cfg.MaxCycles())
}

func TestLoadMissingExplicitPath(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: filepath.Join(t.TempDir(), "nope.yaml")}
	err := cfg.Load()
	require.Error(t, err)

	var cfgErr errclass.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "path", cfgErr.Field)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: writeConfig(t, "version: [unclosed\n")}
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: writeConfig(t, "version: 7\n")}
	err := cfg.Load()
	require.Error(t, err)

	var cfgErr errclass.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "version", cfgErr.Field)
}

func TestLoadRejectsNegativeRotation(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: writeConfig(t, `
version: 0
rotation:
  max_cycles: -1
`)}
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: writeConfig(t, `
version: 0
gemini:
  model: gemini-2.0-flash
rotation:
  max_cycles: 2
`)}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "model=gemini-2.0-flash keyring=false max_cycles=2", cfg.Describe())
	assert.Equal(t, "not loaded", (&config.Config{}).Describe())
}
