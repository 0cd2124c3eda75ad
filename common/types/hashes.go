package types

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/hash"
)

const (
	// Hash32Length is 32, the expected length of the hash.
	Hash32Length = 32
)

// Hash32 represents the 32-byte sha256 hash of arbitrary data.
type Hash32 [Hash32Length]byte

// CalcHash32 returns the 32-byte sha256 sum of the given data.
func CalcHash32(data []byte) Hash32 {
	return hash.Sum(data)
}

// RandomHash returns a random Hash32. It is used for testing.
func RandomHash() Hash32 {
	var h Hash32
	if _, err := rand.Read(h[:]); err != nil {
		panic(err)
	}
	return h
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash32) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash32) Hex() string { return hex.EncodeToString(h[:]) }

// String implements the stringer interface.
func (h Hash32) String() string { return h.Hex() }

// ShortString returns the first 10 characters of the hash, for logging purposes.
func (h Hash32) ShortString() string { return h.Hex()[:10] }

// EncodeScale implements scale codec interface.
func (h *Hash32) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, h[:])
}

// DecodeScale implements scale codec interface.
func (h *Hash32) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, h[:])
}

// OpHash identifies a single ledger operation by the hash of its content.
type OpHash Hash32

// BytesToOpHash is a helper to copy a buffer into an OpHash.
func BytesToOpHash(buf []byte) (h OpHash) {
	copy(h[:], buf)
	return h
}

// RandomOpHash returns a random OpHash. It is used for testing.
func RandomOpHash() OpHash {
	return OpHash(RandomHash())
}

// Bytes returns the byte representation of the hash.
func (h OpHash) Bytes() []byte { return h[:] }

// String implements fmt.Stringer.
func (h OpHash) String() string { return Hash32(h).String() }

// ShortString returns a shortened hash, for logging purposes.
func (h OpHash) ShortString() string { return Hash32(h).ShortString() }

// Field returns a log field for the hash.
func (h OpHash) Field() zap.Field { return zap.Stringer("op", h) }

// EncodeScale implements scale codec interface.
func (h *OpHash) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, h[:])
}

// DecodeScale implements scale codec interface.
func (h *OpHash) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, h[:])
}

// OpHashes is a list of operation hashes that can be logged compactly.
type OpHashes []OpHash

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (hs OpHashes) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for n, h := range hs {
		if n == 3 {
			enc.AppendString("...")
			break
		}
		enc.AppendString(h.ShortString())
	}
	return nil
}
