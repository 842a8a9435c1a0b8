package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, content InstallConfig) string {
	t.Helper()
	path := filepath.Join(dir, installConfigFileName)
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadInstallConfig_MissingFileUsesDefaults(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := LoadInstallConfig(tempDir)
	assert.NoError(t, err)
	assert.Empty(t, cfg.SelectedMCPServers)
	assert.Empty(t, cfg.Options)
}

func TestLoadInstallConfig_FromDirectory(t *testing.T) {
	tempDir := t.TempDir()
	createTempConfigFile(t, tempDir, InstallConfig{
		SelectedMCPServers: []string{"magic", "context7"},
		Options:            map[string]string{"TWENTYFIRST_API_KEY": "secret"},
	})

	cfg, err := LoadInstallConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"magic", "context7"}, cfg.SelectedMCPServers)
	assert.Equal(t, "secret", cfg.Options["TWENTYFIRST_API_KEY"])
}

func TestLoadInstallConfig_DirectFilePath(t *testing.T) {
	tempDir := t.TempDir()
	path := createTempConfigFile(t, tempDir, InstallConfig{
		SelectedMCPServers: []string{"sequential"},
	})

	cfg, err := LoadInstallConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sequential"}, cfg.SelectedMCPServers)
}

func TestLoadInstallConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, installConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("selected_mcp_servers: [unterminated"), 0644))

	_, err := LoadInstallConfig(tempDir)
	assert.Error(t, err)
}

func TestInstallConfigIsSelected(t *testing.T) {
	cfg := InstallConfig{SelectedMCPServers: []string{"magic", "context7"}}

	assert.True(t, cfg.IsSelected("magic"))
	assert.True(t, cfg.IsSelected("context7"))
	assert.False(t, cfg.IsSelected("sequential"))
	assert.False(t, cfg.IsSelected(""))
}

func TestMetadataRoundTrip(t *testing.T) {
	tempDir := t.TempDir()

	meta := InstallMetadata{
		Version:     "1.2.3",
		InstalledAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Components:  []string{"magic", "sequential"},
	}
	require.NoError(t, SaveMetadata(tempDir, meta))

	loaded, err := LoadMetadata(tempDir)
	require.NoError(t, err)
	assert.Equal(t, meta.Version, loaded.Version)
	assert.Equal(t, meta.Components, loaded.Components)
	assert.True(t, meta.InstalledAt.Equal(loaded.InstalledAt))
}

func TestLoadMetadata_NeverInstalled(t *testing.T) {
	_, err := LoadMetadata(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
