package gossip

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timotree3/holochain/bloom"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/gossip/key"
)

// tinyFP makes false positives practically impossible in small tests.
const tinyFP = 1e-9

func opHash(n uint64) types.OpHash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return types.OpHash(types.CalcHash32(buf[:]))
}

func timedOps(times ...types.Timestamp) []TimedOp {
	ops := make([]TimedOp, 0, len(times))
	for _, ts := range times {
		ops = append(ops, TimedOp{Hash: opHash(uint64(ts)), AuthoredAt: ts})
	}
	return ops
}

func TestAgentSnapshotEmpty(t *testing.T) {
	filter, ok, err := AgentSnapshot(nil, nil, tinyFP)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, filter)

	within := arc.Arc{Start: 0, End: 100}
	agents := []types.AgentInfo{
		{Agent: types.RandomAgentID(), SignedAtMs: 1, Arc: arc.Arc{Start: 200, End: 300}},
	}
	filter, ok, err = AgentSnapshot(agents, &within, tinyFP)
	require.NoError(t, err)
	require.False(t, ok, "no agent overlaps the arc")
	require.Empty(t, filter)
}

func TestAgentSnapshotWithin(t *testing.T) {
	inside := types.AgentInfo{Agent: types.RandomAgentID(), SignedAtMs: 1, Arc: arc.Arc{Start: 50, End: 150}}
	outside := types.AgentInfo{Agent: types.RandomAgentID(), SignedAtMs: 2, Arc: arc.Arc{Start: 200, End: 300}}
	agents := []types.AgentInfo{inside, outside}

	within := arc.Arc{Start: 0, End: 100}
	enc, ok, err := AgentSnapshot(agents, &within, tinyFP)
	require.NoError(t, err)
	require.True(t, ok)
	f, err := bloom.Decode(enc)
	require.NoError(t, err)
	require.True(t, f.Check(key.FromAgent(&inside)))
	require.False(t, f.Check(key.FromAgent(&outside)))
	require.EqualValues(t, 1, f.Capacity())

	enc, ok, err = AgentSnapshot(agents, nil, tinyFP)
	require.NoError(t, err)
	require.True(t, ok)
	f, err = bloom.Decode(enc)
	require.NoError(t, err)
	require.True(t, f.Check(key.FromAgent(&inside)))
	require.True(t, f.Check(key.FromAgent(&outside)))
}

func TestOpSnapshotEmpty(t *testing.T) {
	enc, err := OpSnapshot(nil, tinyFP)
	require.NoError(t, err)
	f, err := bloom.Decode(enc)
	require.NoError(t, err)
	require.False(t, f.Check(key.Op(opHash(1))))
}

func TestLocalOutcome(t *testing.T) {
	w := TimeWindow{Start: 0, End: 50}

	outcome, err := LocalOutcome(timedOps(60, 70), w, tinyFP)
	require.NoError(t, err)
	require.Equal(t, MissingAllHashes{Window: w}, outcome)

	outcome, err = LocalOutcome(timedOps(5, 40, 60), w, tinyFP)
	require.NoError(t, err)
	have, ok := outcome.(HaveHashes)
	require.True(t, ok, "unexpected outcome %s", outcome)
	require.Equal(t, w, have.Window)
	f, err := bloom.Decode(have.Filter)
	require.NoError(t, err)
	require.True(t, f.Check(key.Op(opHash(5))))
	require.True(t, f.Check(key.Op(opHash(40))))
	require.False(t, f.Check(key.Op(opHash(60))))
}
