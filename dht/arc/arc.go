// Package arc defines the circular location space that agents and operations
// are placed in, and the arcs of that space agents claim to store.
package arc

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/hash"
)

// Loc is a location in the circular space [0, 2^32).
type Loc uint32

// MaxLoc is the largest location. The location following it is 0.
const MaxLoc = Loc(math.MaxUint32)

const spaceSize = uint64(1) << 32

// LocOf derives the location of a hash in the circular space.
// The blake3 digest of the hash is truncated to 16 bytes and its four
// little-endian 32-bit words are XORed together.
func LocOf(h []byte) Loc {
	d := hash.Sum16(h)
	var l uint32
	for i := 0; i < len(d); i += 4 {
		l ^= binary.LittleEndian.Uint32(d[i:])
	}
	return Loc(l)
}

func (l Loc) String() string {
	return fmt.Sprintf("%08x", uint32(l))
}

// Arc is a half-open interval [Start, End) of the circular space.
// Start == End denotes the full space. Start > End denotes an arc wrapping
// around zero, that is [Start, MaxLoc] followed by [0, End).
type Arc struct {
	Start, End Loc
}

// Full returns an arc covering the whole space.
func Full() Arc {
	return Arc{}
}

// FromCenter returns an arc of 2*halfLen locations centered on loc.
// If the arc would cover the whole space, the full arc is returned.
func FromCenter(loc Loc, halfLen uint32) Arc {
	if uint64(halfLen)*2 >= spaceSize {
		return Full()
	}
	return Arc{Start: loc - Loc(halfLen), End: loc + Loc(halfLen)}
}

// IsFull returns true if the arc covers the whole space.
func (a Arc) IsFull() bool {
	return a.Start == a.End
}

// Wraps returns true if the arc crosses the zero point.
func (a Arc) Wraps() bool {
	return a.Start > a.End
}

// Contains returns true if loc lies within the arc.
func (a Arc) Contains(loc Loc) bool {
	switch {
	case a.Start == a.End:
		return true
	case a.Start < a.End:
		return a.Start <= loc && loc < a.End
	default:
		return loc >= a.Start || loc < a.End
	}
}

// Len returns the number of locations covered by the arc.
func (a Arc) Len() uint64 {
	if a.IsFull() {
		return spaceSize
	}
	return uint64(a.End - a.Start)
}

// Overlaps returns true if the two arcs have at least one location in common.
func (a Arc) Overlaps(b Arc) bool {
	return len(a.Intersect(b)) != 0
}

// Intersect returns the intersection of two arcs. Intersecting two arcs may
// yield zero, one or two arcs.
func (a Arc) Intersect(b Arc) []Arc {
	var segs []segment
	for _, sa := range a.segments() {
		for _, sb := range b.segments() {
			if s, ok := sa.intersect(sb); ok {
				segs = append(segs, s)
			}
		}
	}
	return fromSegments(segs)
}

func (a Arc) String() string {
	if a.IsFull() {
		return "[full]"
	}
	return fmt.Sprintf("[%s, %s)", a.Start, a.End)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (a Arc) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("start", a.Start.String())
	enc.AddString("end", a.End.String())
	enc.AddBool("full", a.IsFull())
	return nil
}

// EncodeScale implements scale codec interface.
func (a *Arc) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact32(enc, uint32(a.Start))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact32(enc, uint32(a.End))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (a *Arc) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Start = Loc(field)
	}
	{
		field, n, err := scale.DecodeCompact32(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.End = Loc(field)
	}
	return total, nil
}

// ContainsAny returns true if loc lies within any of the arcs.
func ContainsAny(arcs []Arc, loc Loc) bool {
	for _, a := range arcs {
		if a.Contains(loc) {
			return true
		}
	}
	return false
}

// OverlapsAny returns true if a overlaps any of the arcs.
func OverlapsAny(arcs []Arc, a Arc) bool {
	for _, b := range arcs {
		if a.Overlaps(b) {
			return true
		}
	}
	return false
}

// IntersectAll returns the normalized intersection of two sets of arcs,
// that is, the set of locations covered both by some arc in x and some arc
// in y. The resulting arcs don't overlap each other.
func IntersectAll(x, y []Arc) []Arc {
	var segs []segment
	for _, a := range x {
		for _, b := range y {
			for _, r := range a.Intersect(b) {
				segs = append(segs, r.segments()...)
			}
		}
	}
	return fromSegments(segs)
}

// Normalize merges overlapping arcs, returning an equivalent set of disjoint
// arcs.
func Normalize(arcs []Arc) []Arc {
	var segs []segment
	for _, a := range arcs {
		segs = append(segs, a.segments()...)
	}
	return fromSegments(segs)
}

// segment is a non-wrapping interval [lo, hi) of [0, 2^32].
type segment struct {
	lo, hi uint64
}

func (s segment) intersect(o segment) (segment, bool) {
	r := segment{lo: max(s.lo, o.lo), hi: min(s.hi, o.hi)}
	return r, r.lo < r.hi
}

func (a Arc) segments() []segment {
	switch {
	case a.IsFull():
		return []segment{{0, spaceSize}}
	case a.Start < a.End:
		return []segment{{uint64(a.Start), uint64(a.End)}}
	case a.End == 0:
		return []segment{{uint64(a.Start), spaceSize}}
	default:
		return []segment{{uint64(a.Start), spaceSize}, {0, uint64(a.End)}}
	}
}

func fromSegments(segs []segment) []Arc {
	if len(segs) == 0 {
		return nil
	}
	slices.SortFunc(segs, func(a, b segment) int {
		return cmp.Compare(a.lo, b.lo)
	})
	merged := segs[:1]
	for _, s := range segs[1:] {
		last := &merged[len(merged)-1]
		if s.lo <= last.hi {
			last.hi = max(last.hi, s.hi)
			continue
		}
		merged = append(merged, s)
	}
	if len(merged) == 1 && merged[0].lo == 0 && merged[0].hi == spaceSize {
		return []Arc{Full()}
	}
	var wrap *Arc
	if len(merged) > 1 && merged[0].lo == 0 && merged[len(merged)-1].hi == spaceSize {
		// the first and the last segments join across the zero point
		wrap = &Arc{Start: Loc(merged[len(merged)-1].lo), End: Loc(merged[0].hi)}
		merged = merged[1 : len(merged)-1]
	}
	r := make([]Arc, 0, len(merged)+1)
	for _, s := range merged {
		// hi == 2^32 truncates to End == 0, which is the wrapping [lo, MaxLoc]
		r = append(r, Arc{Start: Loc(s.lo), End: Loc(s.hi)})
	}
	if wrap != nil {
		r = append(r, *wrap)
	}
	return r
}
