package gossip

import (
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/timotree3/holochain/bloom"
)

// maxFilterSize limits encoded filters accepted from the wire.
const maxFilterSize = 1 << 24

// TimedOutcome is the result of comparing one time window. It is one of
// NoOverlap, MissingAllHashes or HaveHashes.
type TimedOutcome interface {
	fmt.Stringer
	timedOutcome() outcomeType
}

type outcomeType byte

const (
	outcomeNoOverlap outcomeType = iota
	outcomeMissingAll
	outcomeHaveHashes
)

// NoOverlap means the peers share no part of the location space and have
// nothing to exchange.
type NoOverlap struct{}

func (NoOverlap) timedOutcome() outcomeType { return outcomeNoOverlap }

func (NoOverlap) String() string { return "NoOverlap" }

// MissingAllHashes means the sender holds no operations in Window, so the
// receiver must send everything it has in the window.
type MissingAllHashes struct {
	Window TimeWindow
}

func (MissingAllHashes) timedOutcome() outcomeType { return outcomeMissingAll }

func (o MissingAllHashes) String() string {
	return fmt.Sprintf("MissingAllHashes%s", o.Window)
}

// HaveHashes carries a filter of the operations the sender holds in Window.
type HaveHashes struct {
	Filter bloom.Encoded
	Window TimeWindow
}

func (HaveHashes) timedOutcome() outcomeType { return outcomeHaveHashes }

func (o HaveHashes) String() string {
	return fmt.Sprintf("HaveHashes%s(%d bytes)", o.Window, len(o.Filter))
}

// outcomeWindow returns the window of the outcome, if it has one.
func outcomeWindow(o TimedOutcome) (TimeWindow, bool) {
	switch o := o.(type) {
	case MissingAllHashes:
		return o.Window, true
	case HaveHashes:
		return o.Window, true
	}
	return TimeWindow{}, false
}

func encodeOutcome(enc *scale.Encoder, o TimedOutcome) (total int, err error) {
	if o == nil {
		o = NoOverlap{}
	}
	{
		// enums are encoded as a full uint8, not compact
		n, err := scale.EncodeByte(enc, byte(o.timedOutcome()))
		if err != nil {
			return total, err
		}
		total += n
	}
	switch o := o.(type) {
	case MissingAllHashes:
		n, err := o.Window.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	case HaveHashes:
		n, err := scale.EncodeByteSliceWithLimit(enc, o.Filter, maxFilterSize)
		if err != nil {
			return total, err
		}
		total += n
		n, err = o.Window.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func decodeOutcome(dec *scale.Decoder) (o TimedOutcome, total int, err error) {
	typ, n, err := scale.DecodeByte(dec)
	if err != nil {
		return nil, total, err
	}
	total += n
	switch outcomeType(typ) {
	case outcomeNoOverlap:
		return NoOverlap{}, total, nil
	case outcomeMissingAll:
		var m MissingAllHashes
		n, err := m.Window.DecodeScale(dec)
		total += n
		if err != nil {
			return nil, total, err
		}
		return m, total, nil
	case outcomeHaveHashes:
		var h HaveHashes
		filter, n, err := scale.DecodeByteSliceWithLimit(dec, maxFilterSize)
		total += n
		if err != nil {
			return nil, total, err
		}
		h.Filter = filter
		n, err = h.Window.DecodeScale(dec)
		total += n
		if err != nil {
			return nil, total, err
		}
		return h, total, nil
	}
	return nil, total, fmt.Errorf("unknown outcome type %d", typ)
}
