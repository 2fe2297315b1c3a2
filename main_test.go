package main

import (
	"os"
	"testing"

	"github.com/ByteMirror/gitscrub/config"
	"github.com/ByteMirror/gitscrub/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	defer log.Close()

	os.Exit(m.Run())
}

func TestSaveIdentity(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, saveIdentity("dev@example.com", "Dev"))

	cfg := config.LoadConfig()
	assert.Equal(t, "dev@example.com", cfg.IdentityEmail)
	assert.Equal(t, "Dev", cfg.IdentityName)

	// The override flows into the scrubber's identity.
	scrubber := buildScrubber(cfg, nil)
	assert.Equal(t, "dev@example.com", scrubber.Identity().Email)
	assert.Equal(t, "Dev", scrubber.Identity().Name)
}
