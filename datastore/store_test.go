package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/gossip"
	"github.com/timotree3/holochain/log/logtest"
	"github.com/timotree3/holochain/sql"
)

func newStore(tb testing.TB) *Store {
	db := sql.InMemory()
	tb.Cleanup(func() { require.NoError(tb, db.Close()) })
	return New(db, WithLogger(logtest.New(tb)), WithCacheSize(2))
}

func TestArcs(t *testing.T) {
	s := newStore(t)
	require.Empty(t, s.Arcs())

	s.SetArcs([]arc.Arc{{Start: 10, End: 20}, {Start: 15, End: 30}})
	require.Equal(t, []arc.Arc{{Start: 10, End: 30}}, s.Arcs())

	got := s.Arcs()
	got[0].End = 100
	require.Equal(t, []arc.Arc{{Start: 10, End: 30}}, s.Arcs())
}

func TestOps(t *testing.T) {
	s := newStore(t)
	op := types.NewOp(10, []byte("data"))

	added, err := s.AddOp(op)
	require.NoError(t, err)
	require.True(t, added)
	added, err = s.AddOp(op)
	require.NoError(t, err)
	require.False(t, added)

	has, err := s.HasOp(op.Hash)
	require.NoError(t, err)
	require.True(t, has)
	got, err := s.GetOp(op.Hash)
	require.NoError(t, err)
	require.Equal(t, op, got)

	// evict op from the cache
	for i := range 3 {
		_, err := s.AddOp(types.NewOp(types.Timestamp(i), []byte{byte(i)}))
		require.NoError(t, err)
	}
	got, err = s.GetOp(op.Hash)
	require.NoError(t, err)
	require.Equal(t, op, got)

	_, err = s.GetOp(types.RandomOpHash())
	require.ErrorIs(t, err, sql.ErrNotFound)

	forged := types.NewOp(10, []byte("data"))
	forged.Data = []byte("other")
	_, err = s.AddOp(forged)
	require.ErrorIs(t, err, ErrInvalidOp)
}

func TestOpsInWindow(t *testing.T) {
	s := newStore(t)
	var all []*types.Op
	for _, at := range []types.Timestamp{5, 40, 60} {
		op := types.NewOp(at, []byte{byte(at)})
		_, err := s.AddOp(op)
		require.NoError(t, err)
		all = append(all, op)
	}

	got, err := s.OpsInWindow(context.Background(), []arc.Arc{arc.Full()}, gossip.TimeWindow{Start: 0, End: 50})
	require.NoError(t, err)
	require.Equal(t, []gossip.TimedOp{
		{Hash: all[0].Hash, AuthoredAt: 5},
		{Hash: all[1].Hash, AuthoredAt: 40},
	}, got)

	only := arc.Arc{Start: all[2].Loc(), End: all[2].Loc() + 1}
	got, err = s.OpsInWindow(context.Background(), []arc.Arc{only}, gossip.FullWindow())
	require.NoError(t, err)
	require.Equal(t, []gossip.TimedOp{{Hash: all[2].Hash, AuthoredAt: 60}}, got)

	oldest, ok, err := s.Oldest(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Timestamp(5), oldest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.OpsInWindow(ctx, []arc.Arc{arc.Full()}, gossip.FullWindow())
	require.ErrorIs(t, err, context.Canceled)
}

func TestAgents(t *testing.T) {
	s := newStore(t)
	id := types.RandomAgentID()
	older := &types.AgentInfo{Agent: id, SignedAtMs: 1, ExpiresAtMs: 10, Arc: arc.Arc{Start: 0, End: 100}}
	newer := &types.AgentInfo{Agent: id, SignedAtMs: 2, ExpiresAtMs: 20, Arc: arc.Arc{Start: 0, End: 100}}

	added, err := s.AddAgent(newer)
	require.NoError(t, err)
	require.True(t, added)
	added, err = s.AddAgent(older)
	require.NoError(t, err)
	require.False(t, added)

	got, err := s.GetAgent(newer.Key())
	require.NoError(t, err)
	require.Equal(t, newer, got)
	_, err = s.GetAgent(older.Key())
	require.ErrorIs(t, err, sql.ErrNotFound)

	infos, err := s.AgentsOverlapping(context.Background(), []arc.Arc{{Start: 50, End: 60}})
	require.NoError(t, err)
	require.Equal(t, []types.AgentInfo{*newer}, infos)
	infos, err = s.AgentsOverlapping(context.Background(), []arc.Arc{{Start: 200, End: 300}})
	require.NoError(t, err)
	require.Empty(t, infos)

	n, err := s.PruneAgents(15)
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = s.PruneAgents(21)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
