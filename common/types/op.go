package types

import (
	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/dht/arc"
)

// MaxOpSize is the largest payload accepted for a single operation.
const MaxOpSize = 1 << 20

// Op is a single content-addressed ledger operation.
type Op struct {
	Hash       OpHash
	AuthoredAt Timestamp
	Data       []byte
}

// NewOp creates an operation with the hash computed over its data.
func NewOp(authoredAt Timestamp, data []byte) *Op {
	return &Op{
		Hash:       OpHash(CalcHash32(data)),
		AuthoredAt: authoredAt,
		Data:       data,
	}
}

// Verify checks that the hash of the operation matches its data.
func (op *Op) Verify() bool {
	return OpHash(CalcHash32(op.Data)) == op.Hash
}

// Loc returns the location of the operation in the circular space.
func (op *Op) Loc() arc.Loc {
	return op.Hash.Loc()
}

// Loc returns the location of the operation hash in the circular space.
func (h OpHash) Loc() arc.Loc {
	return arc.LocOf(h[:])
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (op *Op) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("hash", op.Hash.ShortString())
	enc.AddUint64("authored_at_ms", uint64(op.AuthoredAt))
	enc.AddInt("size", len(op.Data))
	return nil
}

// EncodeScale implements scale codec interface.
func (op *Op) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, op.Hash[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(op.AuthoredAt))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, op.Data, MaxOpSize)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (op *Op) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, op.Hash[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := DecodeTimestamp(dec)
		if err != nil {
			return total, err
		}
		total += n
		op.AuthoredAt = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxOpSize)
		if err != nil {
			return total, err
		}
		total += n
		op.Data = field
	}
	return total, nil
}
