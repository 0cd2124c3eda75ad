package arc

import (
	"bytes"
	"testing"

	"github.com/spacemeshos/go-scale"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	for _, tc := range []struct {
		desc string
		arc  Arc
		in   []Loc
		out  []Loc
	}{
		{
			desc: "full",
			arc:  Full(),
			in:   []Loc{0, 1, 100, MaxLoc - 1, MaxLoc},
		},
		{
			desc: "plain",
			arc:  Arc{Start: 10, End: 20},
			in:   []Loc{10, 11, 19},
			out:  []Loc{0, 9, 20, 21, MaxLoc},
		},
		{
			desc: "wrapping",
			arc:  Arc{Start: MaxLoc - 9, End: 10},
			in:   []Loc{MaxLoc - 9, MaxLoc - 1, MaxLoc, 0, 1, 9},
			out:  []Loc{MaxLoc - 10, 10, 11, 1 << 31},
		},
		{
			desc: "up to max",
			arc:  Arc{Start: 1000, End: 0},
			in:   []Loc{1000, 1 << 31, MaxLoc},
			out:  []Loc{0, 1, 999},
		},
		{
			desc: "from zero",
			arc:  Arc{Start: 0, End: 1000},
			in:   []Loc{0, 999},
			out:  []Loc{1000, MaxLoc},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			for _, l := range tc.in {
				require.True(t, tc.arc.Contains(l), "%s should contain %s", tc.arc, l)
			}
			for _, l := range tc.out {
				require.False(t, tc.arc.Contains(l), "%s should not contain %s", tc.arc, l)
			}
		})
	}
}

func TestLen(t *testing.T) {
	require.Equal(t, uint64(1)<<32, Full().Len())
	require.Equal(t, uint64(10), Arc{Start: 10, End: 20}.Len())
	require.Equal(t, uint64(20), Arc{Start: MaxLoc - 9, End: 10}.Len())
	require.Equal(t, uint64(1)<<32-1000, Arc{Start: 1000, End: 0}.Len())
}

func TestFromCenter(t *testing.T) {
	a := FromCenter(5, 10)
	require.Equal(t, Arc{Start: MaxLoc - 4, End: 15}, a)
	require.True(t, a.Contains(0))
	require.True(t, a.Contains(14))
	require.False(t, a.Contains(15))
	require.True(t, FromCenter(5, 1<<31).IsFull())
}

func TestIntersect(t *testing.T) {
	for _, tc := range []struct {
		desc string
		a, b Arc
		exp  []Arc
	}{
		{
			desc: "disjoint",
			a:    Arc{Start: 0, End: 10},
			b:    Arc{Start: 10, End: 20},
			exp:  nil,
		},
		{
			desc: "nested",
			a:    Arc{Start: 0, End: 100},
			b:    Arc{Start: 10, End: 20},
			exp:  []Arc{{Start: 10, End: 20}},
		},
		{
			desc: "full",
			a:    Full(),
			b:    Arc{Start: MaxLoc - 9, End: 10},
			exp:  []Arc{{Start: MaxLoc - 9, End: 10}},
		},
		{
			desc: "both full",
			a:    Full(),
			b:    Full(),
			exp:  []Arc{Full()},
		},
		{
			desc: "wrapping with plain",
			a:    Arc{Start: MaxLoc - 9, End: 10},
			b:    Arc{Start: 5, End: 100},
			exp:  []Arc{{Start: 5, End: 10}},
		},
		{
			desc: "two wrapping",
			a:    Arc{Start: MaxLoc - 9, End: 10},
			b:    Arc{Start: MaxLoc - 4, End: 20},
			exp:  []Arc{{Start: MaxLoc - 4, End: 10}},
		},
		{
			desc: "two pieces",
			a:    Arc{Start: 100, End: 10},
			b:    Arc{Start: 5, End: 200},
			exp:  []Arc{{Start: 5, End: 10}, {Start: 100, End: 200}},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.exp, tc.a.Intersect(tc.b))
			require.Equal(t, tc.exp, tc.b.Intersect(tc.a))
			require.Equal(t, len(tc.exp) != 0, tc.a.Overlaps(tc.b))
		})
	}
}

func TestIntersectAll(t *testing.T) {
	local := []Arc{{Start: 0, End: 100}, {Start: 50, End: 150}}
	remote := []Arc{{Start: 90, End: 120}, {Start: MaxLoc - 9, End: 10}}
	require.Equal(t,
		[]Arc{{Start: 0, End: 10}, {Start: 90, End: 120}},
		IntersectAll(local, remote))
	require.Empty(t, IntersectAll(local, nil))
	require.Empty(t, IntersectAll([]Arc{{Start: 0, End: 10}}, []Arc{{Start: 10, End: 20}}))
}

func TestNormalize(t *testing.T) {
	require.Equal(t,
		[]Arc{{Start: 0, End: 30}},
		Normalize([]Arc{{Start: 10, End: 30}, {Start: 0, End: 10}, {Start: 5, End: 15}}))
	require.Equal(t,
		[]Arc{{Start: MaxLoc - 9, End: 10}},
		Normalize([]Arc{{Start: 0, End: 10}, {Start: MaxLoc - 9, End: 0}}))
	require.Equal(t,
		[]Arc{Full()},
		Normalize([]Arc{{Start: 0, End: 1 << 31}, {Start: 1 << 31, End: 0}}))
}

func TestLocOf(t *testing.T) {
	a := LocOf([]byte("some op hash"))
	require.Equal(t, a, LocOf([]byte("some op hash")))
	require.NotEqual(t, a, LocOf([]byte("another op hash")))
}

func TestArcScale(t *testing.T) {
	for _, a := range []Arc{Full(), {Start: 1, End: 2}, {Start: MaxLoc, End: 7}} {
		var buf bytes.Buffer
		_, err := a.EncodeScale(scale.NewEncoder(&buf))
		require.NoError(t, err)
		var decoded Arc
		_, err = decoded.DecodeScale(scale.NewDecoder(&buf))
		require.NoError(t, err)
		require.Equal(t, a, decoded)
	}
}
