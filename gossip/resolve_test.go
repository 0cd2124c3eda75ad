package gossip

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timotree3/holochain/bloom"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
)

func TestResolveOpsHaveHashes(t *testing.T) {
	w := TimeWindow{Start: 0, End: 100}
	filter, err := OpSnapshot([]types.OpHash{opHash(10), opHash(30)}, tinyFP)
	require.NoError(t, err)

	missing, err := ResolveOps(timedOps(10, 20, 30), HaveHashes{Filter: filter, Window: w})
	require.NoError(t, err)
	require.Equal(t, []types.OpHash{opHash(20)}, missing)
}

func TestResolveOpsHaveHashesOutsideWindow(t *testing.T) {
	filter, err := OpSnapshot(nil, tinyFP)
	require.NoError(t, err)

	missing, err := ResolveOps(timedOps(10, 20, 30), HaveHashes{Filter: filter, Window: TimeWindow{Start: 15, End: 25}})
	require.NoError(t, err)
	require.Equal(t, []types.OpHash{opHash(20)}, missing)
}

func TestResolveOpsNoOverlap(t *testing.T) {
	missing, err := ResolveOps(timedOps(10, 20, 30), NoOverlap{})
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestResolveOpsMissingAll(t *testing.T) {
	missing, err := ResolveOps(timedOps(5, 40, 60), MissingAllHashes{Window: TimeWindow{Start: 0, End: 50}})
	require.NoError(t, err)
	require.Equal(t, []types.OpHash{opHash(5), opHash(40)}, missing)
}

func TestResolveOpsPreservesOrder(t *testing.T) {
	local := timedOps(30, 10, 20)
	missing, err := ResolveOps(local, MissingAllHashes{Window: FullWindow()})
	require.NoError(t, err)
	require.Equal(t, []types.OpHash{opHash(30), opHash(10), opHash(20)}, missing)
}

func TestResolveOpsMalformedFilter(t *testing.T) {
	_, err := ResolveOps(timedOps(10), HaveHashes{Filter: bloom.Encoded{1, 2, 3}, Window: FullWindow()})
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, bloom.ErrDecode)
}

func TestResolveAgents(t *testing.T) {
	agents := []types.AgentInfo{
		{Agent: types.RandomAgentID(), SignedAtMs: 1, Arc: arc.Full()},
		{Agent: types.RandomAgentID(), SignedAtMs: 2, Arc: arc.Full()},
		{Agent: types.RandomAgentID(), SignedAtMs: 3, Arc: arc.Full()},
	}

	t.Run("no filter", func(t *testing.T) {
		missing, err := ResolveAgents(agents, nil, false)
		require.NoError(t, err)
		require.Equal(t, []types.AgentKey{agents[0].Key(), agents[1].Key(), agents[2].Key()}, missing)
	})
	t.Run("filter", func(t *testing.T) {
		filter, ok, err := AgentSnapshot(agents[1:2], nil, tinyFP)
		require.NoError(t, err)
		require.True(t, ok)
		missing, err := ResolveAgents(agents, filter, true)
		require.NoError(t, err)
		require.Equal(t, []types.AgentKey{agents[0].Key(), agents[2].Key()}, missing)
	})
	t.Run("newer version", func(t *testing.T) {
		older := agents[0]
		older.SignedAtMs = 0
		filter, _, err := AgentSnapshot([]types.AgentInfo{older}, nil, tinyFP)
		require.NoError(t, err)
		missing, err := ResolveAgents(agents[:1], filter, true)
		require.NoError(t, err)
		require.Equal(t, []types.AgentKey{agents[0].Key()}, missing)
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := ResolveAgents(agents, bloom.Encoded{0xff}, true)
		require.ErrorIs(t, err, ErrDecode)
	})
}
