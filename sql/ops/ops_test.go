package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/sql"
)

func TestAddGet(t *testing.T) {
	db := sql.InMemory()
	op := types.NewOp(100, []byte("payload"))

	require.NoError(t, Add(db, op))
	require.ErrorIs(t, Add(db, op), sql.ErrObjectExists)

	has, err := Has(db, op.Hash)
	require.NoError(t, err)
	require.True(t, has)

	got, err := Get(db, op.Hash)
	require.NoError(t, err)
	require.Equal(t, op, got)
	require.True(t, got.Verify())

	_, err = Get(db, types.RandomOpHash())
	require.ErrorIs(t, err, sql.ErrNotFound)
	has, err = Has(db, types.RandomOpHash())
	require.NoError(t, err)
	require.False(t, has)
}

func TestIterateInWindow(t *testing.T) {
	db := sql.InMemory()
	var all []*types.Op
	for _, at := range []types.Timestamp{5, 40, 50, 60} {
		op := types.NewOp(at, []byte{byte(at)})
		require.NoError(t, Add(db, op))
		all = append(all, op)
	}

	var got []types.OpHash
	require.NoError(t, IterateInWindow(db, 0, 50,
		func(h types.OpHash, loc arc.Loc, at types.Timestamp) bool {
			require.Equal(t, h.Loc(), loc)
			require.LessOrEqual(t, at, types.Timestamp(50))
			got = append(got, h)
			return true
		}))
	require.Equal(t, []types.OpHash{all[0].Hash, all[1].Hash, all[2].Hash}, got)

	got = nil
	require.NoError(t, IterateInWindow(db, 0, 100,
		func(h types.OpHash, _ arc.Loc, _ types.Timestamp) bool {
			got = append(got, h)
			return false
		}))
	require.Len(t, got, 1)
}

func TestIterateUnboundedWindow(t *testing.T) {
	db := sql.InMemory()
	op := types.NewOp(60, []byte("a"))
	require.NoError(t, Add(db, op))

	for _, end := range []types.Timestamp{types.MaxTimestamp, types.MaxTimestamp + 1, ^types.Timestamp(0)} {
		var got []types.OpHash
		require.NoError(t, IterateInWindow(db, 0, end,
			func(h types.OpHash, _ arc.Loc, _ types.Timestamp) bool {
				got = append(got, h)
				return true
			}))
		require.Equal(t, []types.OpHash{op.Hash}, got, "end %d", uint64(end))
	}
	require.NoError(t, IterateInWindow(db, types.MaxTimestamp+1, ^types.Timestamp(0),
		func(types.OpHash, arc.Loc, types.Timestamp) bool {
			require.Fail(t, "no op is authored past the max timestamp")
			return true
		}))
}

func TestAddOutOfRange(t *testing.T) {
	db := sql.InMemory()
	require.Error(t, Add(db, types.NewOp(types.MaxTimestamp+1, []byte("a"))))
	count, err := Count(db)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestOldest(t *testing.T) {
	db := sql.InMemory()
	_, found, err := Oldest(db)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, Add(db, types.NewOp(70, []byte("a"))))
	require.NoError(t, Add(db, types.NewOp(30, []byte("b"))))
	oldest, found, err := Oldest(db)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, types.Timestamp(30), oldest)

	count, err := Count(db)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
