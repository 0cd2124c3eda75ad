package agents

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/sql"
)

func TestAddSupersedes(t *testing.T) {
	db := sql.InMemory()
	info := &types.AgentInfo{
		Agent:       types.RandomAgentID(),
		SignedAtMs:  10,
		ExpiresAtMs: 100,
		Arc:         arc.Arc{Start: 5, End: 50},
	}
	stored, err := Add(db, info)
	require.NoError(t, err)
	require.True(t, stored)

	stored, err = Add(db, info)
	require.NoError(t, err)
	require.False(t, stored, "same version")

	older := *info
	older.SignedAtMs = 5
	older.Arc = arc.Full()
	stored, err = Add(db, &older)
	require.NoError(t, err)
	require.False(t, stored)

	got, err := Get(db, info.Agent)
	require.NoError(t, err)
	require.Equal(t, info, got)

	newer := *info
	newer.SignedAtMs = 20
	newer.Arc = arc.Arc{Start: 0xf0000000, End: 0x10}
	stored, err = Add(db, &newer)
	require.NoError(t, err)
	require.True(t, stored)

	got, err = GetByKey(db, newer.Key())
	require.NoError(t, err)
	require.Equal(t, &newer, got)
	_, err = GetByKey(db, info.Key())
	require.ErrorIs(t, err, sql.ErrNotFound)
	_, err = Get(db, types.RandomAgentID())
	require.ErrorIs(t, err, sql.ErrNotFound)
}

func TestOverlapping(t *testing.T) {
	db := sql.InMemory()
	a := types.AgentInfo{Agent: types.AgentID{1}, SignedAtMs: 1, ExpiresAtMs: 10, Arc: arc.Arc{Start: 0, End: 100}}
	b := types.AgentInfo{Agent: types.AgentID{2}, SignedAtMs: 1, ExpiresAtMs: 10, Arc: arc.Arc{Start: 200, End: 300}}
	c := types.AgentInfo{Agent: types.AgentID{3}, SignedAtMs: 1, ExpiresAtMs: 10, Arc: arc.Arc{Start: 0xffffff00, End: 10}}
	for _, info := range []types.AgentInfo{a, b, c} {
		_, err := Add(db, &info)
		require.NoError(t, err)
	}

	all, err := All(db)
	require.NoError(t, err)
	require.Equal(t, []types.AgentInfo{a, b, c}, all)

	got, err := Overlapping(db, []arc.Arc{{Start: 50, End: 150}})
	require.NoError(t, err)
	require.Equal(t, []types.AgentInfo{a}, got)

	got, err = Overlapping(db, []arc.Arc{{Start: 5, End: 6}, {Start: 250, End: 260}})
	require.NoError(t, err)
	require.Equal(t, []types.AgentInfo{a, b, c}, got)

	got, err = Overlapping(db, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPrune(t *testing.T) {
	db := sql.InMemory()
	for i, exp := range []types.Timestamp{10, 20, 30} {
		_, err := Add(db, &types.AgentInfo{Agent: types.AgentID{byte(i)}, ExpiresAtMs: exp, Arc: arc.Full()})
		require.NoError(t, err)
	}
	n, err := Prune(db, 25)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	all, err := All(db)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, types.Timestamp(30), all[0].ExpiresAtMs)
}
