package fetch

import (
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/common/types"
)

const (
	// MaxBatchSize is the largest number of records of one kind in a batch.
	MaxBatchSize = 1000
	// maxBatchData bounds the operation payload carried by one batch.
	maxBatchData = 32 << 20
)

// RequestBatch asks the peer for operations and agent infos. ID is the hash
// of the request and is echoed in the response.
type RequestBatch struct {
	ID     types.Hash32
	Ops    []types.OpHash
	Agents []types.AgentKey
}

func (b *RequestBatch) setID() {
	b.ID = types.Hash32{}
	b.ID = types.CalcHash32(codec.MustEncode(b))
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (b *RequestBatch) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", b.ID.ShortString())
	enc.AddInt("ops", len(b.Ops))
	enc.AddInt("agents", len(b.Agents))
	return nil
}

// ResponseBatch carries the requested records the peer has. Records it
// doesn't have are left out.
type ResponseBatch struct {
	ID     types.Hash32
	Ops    []types.Op
	Agents []types.AgentInfo
}

// PushBatch carries records the receiver was found to be missing.
type PushBatch struct {
	Ops    []types.Op
	Agents []types.AgentInfo
}
