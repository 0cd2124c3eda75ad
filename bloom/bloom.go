// Package bloom implements the encoded bloom filters exchanged during
// reconciliation rounds.
//
// The encoding is self-describing:
//
//	version   | 1 byte
//	capacity  | 4 bytes, big-endian
//	fp rate   | 8 bytes, big-endian IEEE 754
//	m         | 8 bytes, big-endian, number of bits
//	k         | 8 bytes, big-endian, number of hash functions
//	length    | 8 bytes, big-endian, bit array length, equal to m
//	words     | 8 bytes each, big-endian
package bloom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	bbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/timotree3/holochain/gossip/key"
)

const (
	// Version of the encoding.
	Version byte = 1

	headerSize = 1 + 4 + 8
	bodyPrefix = 3 * 8
	maxHashes  = 64
	// MaxBits is the largest bit array accepted by Decode.
	MaxBits = 1 << 30
	// maxKeyInput is the longest key.HashInput.
	maxKeyInput = 1 + 32 + 8
)

// ErrDecode is returned when an encoded filter is malformed.
var ErrDecode = errors.New("malformed bloom filter")

// Encoded is the serialized form of a Filter.
type Encoded []byte

// Filter is a probabilistic set of canonical keys. False positives are
// possible, false negatives are not.
type Filter struct {
	capacity uint32
	fpRate   float64
	inner    *bbloom.BloomFilter
}

// New creates a filter sized for the expected number of keys and the target
// false positive rate. Expected counts below 1 are treated as 1.
func New(expected uint, fpRate float64) *Filter {
	if expected < 1 {
		expected = 1
	}
	if expected > math.MaxUint32 {
		expected = math.MaxUint32
	}
	if !(fpRate > 0 && fpRate < 1) {
		panic(fmt.Sprintf("BUG: false positive rate %v out of range (0, 1)", fpRate))
	}
	return &Filter{
		capacity: uint32(expected),
		fpRate:   fpRate,
		inner:    bbloom.NewWithEstimates(expected, fpRate),
	}
}

// Set adds the key to the filter.
func (f *Filter) Set(k key.Key) {
	var buf [maxKeyInput]byte
	f.inner.Add(k.AppendHashInput(buf[:0]))
}

// Check returns false if the key is definitely not in the filter.
func (f *Filter) Check(k key.Key) bool {
	var buf [maxKeyInput]byte
	return f.inner.Test(k.AppendHashInput(buf[:0]))
}

// Capacity is the number of keys the filter was sized for.
func (f *Filter) Capacity() uint32 { return f.capacity }

// FPRate is the false positive rate the filter was sized for.
func (f *Filter) FPRate() float64 { return f.fpRate }

// Bits returns the size of the bit array.
func (f *Filter) Bits() uint { return f.inner.Cap() }

// Hashes returns the number of hash functions.
func (f *Filter) Hashes() uint { return f.inner.K() }

// Equal returns true if both filters have the same parameters and bits.
func (f *Filter) Equal(other *Filter) bool {
	return f.capacity == other.capacity && f.fpRate == other.fpRate && f.inner.Equal(other.inner)
}

// Encode serializes the filter. The returned bytes are owned by the caller.
func (f *Filter) Encode() (Encoded, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	var hdr [headerSize]byte
	hdr[0] = Version
	binary.BigEndian.PutUint32(hdr[1:], f.capacity)
	binary.BigEndian.PutUint64(hdr[5:], math.Float64bits(f.fpRate))
	buf.Write(hdr[:])
	if _, err := f.inner.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("write bloom filter: %w", err)
	}
	out := make(Encoded, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MustEncode serializes the filter and panics on failure.
func (f *Filter) MustEncode() Encoded {
	enc, err := f.Encode()
	if err != nil {
		panic(fmt.Sprintf("BUG: encode bloom filter: %v", err))
	}
	return enc
}

// Decode parses an encoded filter. Any malformed input results in an error
// wrapping ErrDecode.
func Decode(enc Encoded) (*Filter, error) {
	if len(enc) < headerSize+bodyPrefix {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrDecode, len(enc))
	}
	if enc[0] != Version {
		return nil, fmt.Errorf("%w: unknown version %d", ErrDecode, enc[0])
	}
	capacity := binary.BigEndian.Uint32(enc[1:])
	if capacity == 0 {
		return nil, fmt.Errorf("%w: zero capacity", ErrDecode)
	}
	fpRate := math.Float64frombits(binary.BigEndian.Uint64(enc[5:]))
	if !(fpRate > 0 && fpRate < 1) {
		return nil, fmt.Errorf("%w: false positive rate %v out of range", ErrDecode, fpRate)
	}
	body := enc[headerSize:]
	m := binary.BigEndian.Uint64(body)
	k := binary.BigEndian.Uint64(body[8:])
	length := binary.BigEndian.Uint64(body[16:])
	switch {
	case m == 0 || m > MaxBits:
		return nil, fmt.Errorf("%w: invalid number of bits %d", ErrDecode, m)
	case k == 0 || k > maxHashes:
		return nil, fmt.Errorf("%w: invalid number of hashes %d", ErrDecode, k)
	case length != m:
		return nil, fmt.Errorf("%w: bit array length %d doesn't match %d", ErrDecode, length, m)
	}
	words := (m + 63) / 64
	if got := uint64(len(body) - bodyPrefix); got != words*8 {
		return nil, fmt.Errorf("%w: expected %d bytes of bits, got %d", ErrDecode, words*8, got)
	}
	inner := &bbloom.BloomFilter{}
	if err := inner.UnmarshalBinary(body); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &Filter{capacity: capacity, fpRate: fpRate, inner: inner}, nil
}

// Build creates a filter containing all keys. expected is len(keys).
func Build(keys []key.Key, fpRate float64) *Filter {
	f := New(uint(len(keys)), fpRate)
	for _, k := range keys {
		f.Set(k)
	}
	return f
}
