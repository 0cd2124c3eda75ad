package types

import (
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/spacemeshos/go-scale/tester"
	"github.com/stretchr/testify/require"

	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/dht/arc"
)

func TestOpVerify(t *testing.T) {
	op := NewOp(10, []byte("data"))
	require.True(t, op.Verify())
	require.Equal(t, OpHash(CalcHash32([]byte("data"))), op.Hash)
	require.Equal(t, arc.LocOf(op.Hash[:]), op.Loc())

	op.Data = []byte("other")
	require.False(t, op.Verify())
}

func TestOpDecodeLimit(t *testing.T) {
	op := NewOp(10, make([]byte, MaxOpSize+1))
	_, err := codec.Encode(op)
	require.Error(t, err)
}

func TestDecodeTimestampOutOfRange(t *testing.T) {
	op := NewOp(MaxTimestamp+1, []byte("data"))
	var decoded Op
	require.Error(t, codec.Decode(codec.MustEncode(op), &decoded))

	info := &AgentInfo{Agent: RandomAgentID(), SignedAtMs: 1, ExpiresAtMs: ^Timestamp(0)}
	var decodedInfo AgentInfo
	require.Error(t, codec.Decode(codec.MustEncode(info), &decodedInfo))

	op = NewOp(MaxTimestamp, []byte("data"))
	require.NoError(t, codec.Decode(codec.MustEncode(op), &decoded))
	require.Equal(t, *op, decoded)
}

func TestAgentSupersedes(t *testing.T) {
	id := RandomAgentID()
	older := &AgentInfo{Agent: id, SignedAtMs: 10}
	newer := &AgentInfo{Agent: id, SignedAtMs: 20}
	other := &AgentInfo{Agent: RandomAgentID(), SignedAtMs: 30}

	require.True(t, newer.Supersedes(older))
	require.False(t, older.Supersedes(newer))
	require.False(t, newer.Supersedes(newer))
	require.False(t, other.Supersedes(older))
	require.Equal(t, AgentKey{Agent: id, SignedAtMs: 20}, newer.Key())
}

func TestTimestamp(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123).UTC()
	ts := TimestampFromTime(now)
	require.Equal(t, Timestamp(1_700_000_000_123), ts)
	require.Equal(t, now, ts.Time())
	require.Equal(t, Timestamp(0), TimestampFromTime(time.UnixMilli(-1)))
}

func FuzzHash32Consistency(f *testing.F) {
	tester.FuzzConsistency[Hash32](f)
}

func FuzzHash32Safety(f *testing.F) {
	tester.FuzzSafety[Hash32](f)
}

// fuzzTimestamp keeps fuzzed timestamps within the decodable range.
func fuzzTimestamp(ts *Timestamp, c fuzz.Continue) {
	*ts = Timestamp(c.Uint64() & uint64(MaxTimestamp))
}

func FuzzOpConsistency(f *testing.F) {
	tester.FuzzConsistency[Op](f, fuzzTimestamp)
}

func FuzzOpSafety(f *testing.F) {
	tester.FuzzSafety[Op](f)
}

func FuzzAgentInfoConsistency(f *testing.F) {
	tester.FuzzConsistency[AgentInfo](f, fuzzTimestamp)
}

func FuzzAgentInfoSafety(f *testing.F) {
	tester.FuzzSafety[AgentInfo](f)
}
