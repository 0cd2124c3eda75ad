package gossip

import "errors"

var (
	// ErrDecode is returned when a filter, envelope or message from the
	// remote peer is malformed. The round is aborted.
	ErrDecode = errors.New("decode failure")
	// ErrTimeout is returned when the remote peer didn't respond in time.
	ErrTimeout = errors.New("remote timed out")
	// ErrStoreUnavailable is returned when the local store can't be queried.
	ErrStoreUnavailable = errors.New("store unavailable")
)
