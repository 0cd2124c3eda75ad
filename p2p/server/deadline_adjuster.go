package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
)

const deadlineAdjusterChunkSize = 4096

type peerStream interface {
	io.ReadWriteCloser
	SetDeadline(time.Time) error
}

// deadlineAdjuster extends the stream deadline by the idle timeout after
// every chunk of data, never past the hard deadline set on first use.
type deadlineAdjuster struct {
	peerStream
	timeout      time.Duration
	hardTimeout  time.Duration
	clock        clockwork.Clock
	chunkSize    int
	hardDeadline time.Time
	nextAdjust   int
	totalRead    int
	totalWritten int
}

func newDeadlineAdjuster(stream peerStream, timeout, hardTimeout time.Duration) *deadlineAdjuster {
	return &deadlineAdjuster{
		peerStream:  stream,
		timeout:     timeout,
		hardTimeout: hardTimeout,
		clock:       clockwork.NewRealClock(),
		chunkSize:   deadlineAdjusterChunkSize,
	}
}

func (dadj *deadlineAdjuster) augmentError(what string, err error) error {
	if errors.Is(err, io.EOF) {
		return err
	}
	return fmt.Errorf("%s: %d bytes read, %d bytes written, timeout %v, hard timeout %v: %w",
		what, dadj.totalRead, dadj.totalWritten, dadj.timeout, dadj.hardTimeout, err)
}

func (dadj *deadlineAdjuster) adjust() {
	total := dadj.totalRead + dadj.totalWritten
	if !dadj.hardDeadline.IsZero() && total < dadj.nextAdjust {
		return
	}
	now := dadj.clock.Now()
	if dadj.hardDeadline.IsZero() {
		dadj.hardDeadline = now.Add(dadj.hardTimeout)
	}
	deadline := now.Add(dadj.timeout)
	if deadline.After(dadj.hardDeadline) {
		deadline = dadj.hardDeadline
	}
	// not every transport supports deadlines, the request context still applies
	_ = dadj.SetDeadline(deadline)
	dadj.nextAdjust = total + dadj.chunkSize
}

// Read reads at most one chunk from the stream.
func (dadj *deadlineAdjuster) Read(p []byte) (int, error) {
	dadj.adjust()
	if len(p) > dadj.chunkSize {
		p = p[:dadj.chunkSize]
	}
	n, err := dadj.peerStream.Read(p)
	dadj.totalRead += n
	if err != nil {
		return n, dadj.augmentError("read", err)
	}
	return n, nil
}

// Write writes p to the stream chunk by chunk.
func (dadj *deadlineAdjuster) Write(p []byte) (int, error) {
	var written int
	for len(p) > 0 {
		dadj.adjust()
		chunk := p
		if len(chunk) > dadj.chunkSize {
			chunk = chunk[:dadj.chunkSize]
		}
		n, err := dadj.peerStream.Write(chunk)
		written += n
		dadj.totalWritten += n
		if err != nil {
			return written, dadj.augmentError("write", err)
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
		p = p[n:]
	}
	return written, nil
}
