package server

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/libp2p/go-yamux/v4"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	clock     *clockwork.FakeClock
	in        *bytes.Reader
	out       bytes.Buffer
	deadlines []time.Time
	failRead  error
	failWrite error
}

func (s *fakeStream) Read(p []byte) (int, error) {
	s.clock.Advance(time.Second)
	if s.in.Len() == 0 && s.failRead != nil {
		return 0, s.failRead
	}
	return s.in.Read(p)
}

func (s *fakeStream) Write(p []byte) (int, error) {
	s.clock.Advance(time.Second)
	if s.failWrite != nil {
		return 0, s.failWrite
	}
	return s.out.Write(p)
}

func (s *fakeStream) Close() error { return nil }

func (s *fakeStream) SetDeadline(t time.Time) error {
	s.deadlines = append(s.deadlines, t)
	return nil
}

func TestDeadlineAdjuster(t *testing.T) {
	clock := clockwork.NewFakeClock()
	start := clock.Now()
	s := &fakeStream{clock: clock, in: bytes.NewReader([]byte("0123456789"))}
	dadj := newDeadlineAdjuster(s, 10*time.Second, 13*time.Second)
	dadj.clock = clock
	dadj.chunkSize = 4

	b := make([]byte, 10)
	n, err := dadj.Read(b)
	require.NoError(t, err)
	require.Equal(t, 4, n, "reads are limited to a chunk")
	require.Equal(t, []byte("0123"), b[:n])
	require.Equal(t, []time.Time{start.Add(10 * time.Second)}, s.deadlines)

	n, err = dadj.Read(b)
	require.NoError(t, err)
	require.Equal(t, []byte("4567"), b[:n])
	require.Len(t, s.deadlines, 2)
	require.Equal(t, start.Add(11*time.Second), s.deadlines[1])

	n, err = dadj.Write([]byte("abcdefghij"))
	require.NoError(t, err)
	require.Equal(t, 10, n)
	require.Equal(t, "abcdefghij", s.out.String())
	// deadlines never move past the hard deadline
	for _, dl := range s.deadlines {
		require.False(t, dl.After(start.Add(13*time.Second)))
	}
	require.Equal(t, start.Add(13*time.Second), s.deadlines[len(s.deadlines)-1])

	n, err = dadj.Read(b)
	require.NoError(t, err)
	require.Equal(t, []byte("89"), b[:n])

	_, err = dadj.Read(b)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, io.EOF, err, "EOF must not be wrapped")
}

func TestDeadlineAdjusterTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := &fakeStream{
		clock:     clock,
		in:        bytes.NewReader([]byte("xy")),
		failRead:  yamux.ErrTimeout,
		failWrite: yamux.ErrTimeout,
	}
	dadj := newDeadlineAdjuster(s, 10*time.Second, time.Minute)
	dadj.clock = clock

	b := make([]byte, 2)
	_, err := dadj.Read(b)
	require.NoError(t, err)
	_, err = dadj.Read(b)
	require.ErrorIs(t, err, yamux.ErrTimeout)
	require.ErrorContains(t, err, "read: 2 bytes read, 0 bytes written, timeout 10s")

	_, err = dadj.Write([]byte("foo"))
	require.ErrorIs(t, err, yamux.ErrTimeout)
	require.ErrorContains(t, err, "write: 2 bytes read, 0 bytes written")
}
