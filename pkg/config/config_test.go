package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, ".local", "share"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, ".local", "state"))
	return base
}

func TestDefaultsFollowXDG(t *testing.T) {
	base := isolateEnv(t)
	cfg := GetDefaultConfig()

	assert.Equal(t, filepath.Join(base, "Applications"), cfg.StoragePath)
	assert.Equal(t, filepath.Join(base, ".config", "appman", "registry.json"), cfg.RegistryPath)
	assert.Equal(t, filepath.Join(base, ".local", "share", "applications"), cfg.ApplicationsPath)
	assert.Equal(t, filepath.Join(base, ".local", "share", "icons", "hicolor"), cfg.IconsPath)
	assert.Equal(t, filepath.Join(base, ".local", "state", "appman", "logs"), cfg.LogPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 30, cfg.ExtractTimeoutSeconds)
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	base := isolateEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Applications"), cfg.StoragePath)

	// The directories the installer depends on were created.
	assert.DirExists(t, cfg.StoragePath)
	assert.DirExists(t, cfg.ApplicationsPath)
	assert.DirExists(t, filepath.Dir(cfg.RegistryPath))
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	base := isolateEnv(t)

	storage := filepath.Join(base, "elsewhere")
	require.NoError(t, os.MkdirAll(filepath.Dir(ConfigPath()), 0755))
	content := "StoragePath: " + storage + "\nLogLevel: DEBUG\nExtractTimeoutSeconds: 5\n"
	require.NoError(t, os.WriteFile(ConfigPath(), []byte(content), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, storage, cfg.StoragePath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 5, cfg.ExtractTimeoutSeconds)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	isolateEnv(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(ConfigPath()), 0755))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("{{{not yaml"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	isolateEnv(t)

	cfg := GetDefaultConfig()
	cfg.LogLevel = "DEBUG"
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", loaded.LogLevel)
}
