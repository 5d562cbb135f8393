package gitsplitconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitsplit-io/gitsplit/modules/topbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitsplit.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 4\ntraversal_mode = \"fullbase\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "fullbase", cfg.TraversalMode)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultFingerprintBytes, cfg.FingerprintBytes)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestResolveTraversalMode(t *testing.T) {
	cfg := Default()
	cfg.TraversalMode = "topbase-rewind"
	mode, err := cfg.ResolveTraversalMode()
	require.NoError(t, err)
	assert.Equal(t, topbase.TopbaseRewind, mode)
}

func TestResolveTraversalModeUnknownIsError(t *testing.T) {
	cfg := Default()
	cfg.TraversalMode = "bogus"
	_, err := cfg.ResolveTraversalMode()
	assert.Error(t, err)
}
