package gossip

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/common/types"
)

// TimeWindow is a closed range of authoring times [Start, End].
type TimeWindow struct {
	Start, End types.Timestamp
}

// FullWindow covers every possible authoring time.
func FullWindow() TimeWindow {
	return TimeWindow{Start: 0, End: types.MaxTimestamp}
}

// Contains returns true if t lies within the window.
func (w TimeWindow) Contains(t types.Timestamp) bool {
	return w.Start <= t && t <= w.End
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%d, %d]", w.Start, w.End)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (w TimeWindow) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("start", uint64(w.Start))
	enc.AddUint64("end", uint64(w.End))
	return nil
}

// EncodeScale implements scale codec interface.
func (w *TimeWindow) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, uint64(w.Start))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(w.End))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (w *TimeWindow) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeTimestamp(dec)
		if err != nil {
			return total, err
		}
		total += n
		w.Start = field
	}
	{
		field, n, err := types.DecodeTimestamp(dec)
		if err != nil {
			return total, err
		}
		total += n
		w.End = field
	}
	if w.Start > w.End {
		return total, fmt.Errorf("window start %d after end %d", w.Start, w.End)
	}
	return total, nil
}

// SplitWindows splits [from, to] into windows no longer than maxLen,
// newest first. At most limit windows are returned; consecutive windows
// abut, so that no millisecond is skipped or covered twice.
func SplitWindows(from, to types.Timestamp, maxLen time.Duration, limit int) []TimeWindow {
	if from > to {
		from = to
	}
	span := types.Timestamp(maxLen.Milliseconds())
	if span < 1 {
		span = 1
	}
	var windows []TimeWindow
	end := to
	for len(windows) < limit {
		start := from
		if end-from >= span {
			start = end - span + 1
		}
		windows = append(windows, TimeWindow{Start: start, End: end})
		if start == from {
			break
		}
		end = start - 1
	}
	return windows
}
