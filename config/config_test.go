package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/crowd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crowdsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, crowd.DefaultParams(), cfg.Crowd)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  console: false
sim:
  agents: 12
  seed: 99
agent:
  max_speed: 4.5
  intelligence: 0.9
destination:
  center: [10, -20]
  cells: 3
trace:
  dir: /tmp/trace
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Console)
	assert.Equal(t, 12, cfg.Sim.Agents)
	assert.Equal(t, uint64(99), cfg.Sim.Seed)
	assert.Equal(t, int32(1024), cfg.Sim.Capacity)
	assert.Equal(t, float32(4.5), cfg.Crowd.Agent.MaxSpeed)
	assert.Equal(t, float32(0.9), cfg.Crowd.Agent.Intelligence)
	assert.Equal(t, float32(20), cfg.Crowd.Agent.Accel)
	assert.Equal(t, common.Vec2{10, -20}, cfg.Crowd.Destination.Center)
	assert.Equal(t, int32(3), cfg.Crowd.Destination.Cells)
	assert.Equal(t, "/tmp/trace", cfg.Trace.Dir)
	assert.Equal(t, 10, cfg.Trace.Every)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "sim:\n  agentz: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agentz")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Sim.Dt = 0
	cfg.Sim.Agents = 5000
	cfg.Crowd.Agent.Resistance = 1
	cfg.Crowd.Collision.MaxPerCell = 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
	assert.Contains(t, err.Error(), "agent.resistance")
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Sim.Seed = 7
	cfg.Crowd.Destination.Center = common.Vec2{1, 2}
	raw, err := cfg.Marshal()
	require.NoError(t, err)

	got := Default()
	require.NoError(t, Decode(raw, &got))
	assert.Equal(t, cfg, got)
}
