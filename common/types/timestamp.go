package types

import (
	"fmt"
	"math"
	"time"

	"github.com/spacemeshos/go-scale"
)

// MaxTimestamp is the latest representable point in time. Timestamps are
// stored as signed 64-bit integers.
const MaxTimestamp Timestamp = math.MaxInt64

// Timestamp is a point in time expressed in milliseconds since the Unix epoch.
type Timestamp uint64

// TimestampFromTime converts time.Time to a Timestamp.
func TimestampFromTime(t time.Time) Timestamp {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return Timestamp(ms)
}

// Time converts the Timestamp to time.Time.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}

// DecodeTimestamp decodes a compact timestamp and rejects values past
// MaxTimestamp.
func DecodeTimestamp(dec *scale.Decoder) (Timestamp, int, error) {
	field, n, err := scale.DecodeCompact64(dec)
	if err != nil {
		return 0, n, err
	}
	if field > uint64(MaxTimestamp) {
		return 0, n, fmt.Errorf("timestamp %d out of range", field)
	}
	return Timestamp(field), n, nil
}
