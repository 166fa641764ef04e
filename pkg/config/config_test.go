package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10.0, cfg.Tolerance)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 20.0, cfg.PlateStandOff)
	assert.True(t, cfg.SuspectOriginJoints)
	assert.NotEmpty(t, cfg.Standards.BoltDiameters)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Tolerance = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.PlateStandOff = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Standards.BoltDiameters = nil
	assert.Error(t, cfg.Validate())
}

func TestLoadLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ferrite.yaml")
	body := []byte("tolerance: 25\nsuspect_origin_joints: false\nstandards:\n  min_edge_distance: 40\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Tolerance)
	assert.False(t, cfg.SuspectOriginJoints)
	assert.Equal(t, 40.0, cfg.Standards.MinEdgeDistance)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 300.0, cfg.Standards.BasePlateWidth)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tolerance: [nope"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("tolerance: -3\n"), 0o644))
	_, err = Load(invalid)
	assert.Error(t, err)
}
