package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldsim.yaml")
	data := `
seed: 7
chunks_wide: 8
chunks_high: 2
agents: 3
path_budget: 64
tick_interval: 100ms
journal_path: ""
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 8, cfg.ChunksWide)
	assert.Equal(t, 2, cfg.ChunksHigh)
	assert.Equal(t, 3, cfg.Agents)
	assert.Equal(t, 64, cfg.PathBudget)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval.Std())
	assert.Empty(t, cfg.JournalPath)

	// Untouched keys keep their defaults.
	assert.Equal(t, Default().APIPort, cfg.APIPort)
	assert.Equal(t, Default().StreamRadius, cfg.StreamRadius)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunks_wide: [nope"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"zero grid", "chunks_wide: 0"},
		{"negative budget", "path_budget: -1"},
		{"negative stream radius", "stream_radius: -2"},
		{"zero interval", "tick_interval: 0s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fieldsim.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
