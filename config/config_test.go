package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByteMirror/gitscrub/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before all tests to set up the test environment
func TestMain(m *testing.M) {
	// Initialize the logger before any tests run
	log.Initialize(false)
	defer log.Close()

	exitCode := m.Run()
	os.Exit(exitCode)
}

func TestGetConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".gitscrub"), dir)
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig(), cfg)

	// The default was persisted for next time.
	data, err := os.ReadFile(filepath.Join(home, ".gitscrub", ConfigFileName))
	require.NoError(t, err)

	var onDisk Config
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "exec", onDisk.DefaultStore)
}

func TestLoadConfigReadsExisting(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	saved := DefaultConfig()
	saved.IdentityEmail = "dev@example.com"
	saved.ExtraKeys = []string{"alias.st"}
	saved.ConfirmBeforeRun = true
	require.NoError(t, SaveConfig(saved))

	cfg := LoadConfig()
	assert.Equal(t, "dev@example.com", cfg.IdentityEmail)
	assert.Equal(t, []string{"alias.st"}, cfg.ExtraKeys)
	assert.True(t, cfg.ConfirmBeforeRun)
}

func TestLoadConfigFallsBackOnCorruptFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".gitscrub")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not json"), 0644))

	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig(), cfg)
}
