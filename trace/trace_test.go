package trace

import (
	"io"
	"os"
	"testing"

	"github.com/gorustyt/crowdnav/common"
	"github.com/gorustyt/crowdnav/crowd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadTicks(t *testing.T) {
	a := crowd.NewAgents(3)
	p := crowd.DefaultAgentParams()
	a.Add(common.Vec2{1, 2}, 4, p)
	a.Add(common.Vec2{3, 4}, 5, p)
	a.Add(common.Vec2{5, 6}, -1, p)
	a.Remove(1)
	a.States[2] = crowd.Escaping
	a.Velocities[0] = common.Vec2{0.5, -0.5}

	w, err := Create(t.TempDir(), Header{Seed: 7, Capacity: 3, Dt: 0.05})
	require.NoError(t, err)
	require.NoError(t, w.WriteTick(0, a, a.Count()))
	a.Positions[0] = common.Vec2{1.5, 1.5}
	require.NoError(t, w.WriteTick(1, a, 1))
	require.NoError(t, w.Close())
	assert.FileExists(t, w.Path())

	r, err := Open(w.Path())
	require.NoError(t, err)
	defer r.Close()

	h := r.Header()
	assert.NotEmpty(t, h.RunID)
	assert.Contains(t, w.Path(), h.RunID)
	assert.Equal(t, uint64(7), h.Seed)
	assert.NotEmpty(t, h.StartedAt)

	var tick Tick
	require.NoError(t, r.Next(&tick))
	assert.Equal(t, int64(0), tick.Tick)
	require.Len(t, tick.Agents, 2)
	assert.Equal(t, AgentSnapshot{ID: 0, State: "standing", Pos: common.Vec2{1, 2}, Vel: common.Vec2{0.5, -0.5}, Tri: 4, Corner: common.Vec2{1, 2}}, tick.Agents[0])
	assert.Equal(t, int32(2), tick.Agents[1].ID)
	assert.Equal(t, "escaping", tick.Agents[1].State)

	require.NoError(t, r.Next(&tick))
	assert.Equal(t, int64(1), tick.Tick)
	require.Len(t, tick.Agents, 1)
	assert.Equal(t, common.Vec2{1.5, 1.5}, tick.Agents[0].Pos)

	assert.ErrorIs(t, r.Next(&tick), io.EOF)
}

func TestOpenRejectsNonTrace(t *testing.T) {
	path := t.TempDir() + "/junk.jsonl.zst"
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}
