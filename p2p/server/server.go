// Package server implements request/response protocols over libp2p streams.
// A request is a varint-prefixed byte string, the response is a scale
// encoded Response.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/multiformats/go-varint"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/log"
)

var (
	// ErrNotConnected is returned when peer is not connected.
	ErrNotConnected = errors.New("peer is not connected")
	// ErrRequestTooLarge is returned when the request exceeds the size limit.
	ErrRequestTooLarge = errors.New("request too large")
)

// Opt is a type to configure a server.
type Opt func(s *Server)

// WithTimeout configures stream timeout.
// The requests are terminated when no data is received or sent for
// the specified duration.
func WithTimeout(timeout time.Duration) Opt {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// WithHardTimeout configures the hard timeout for requests.
// Requests are terminated if they take longer than the specified
// duration.
func WithHardTimeout(timeout time.Duration) Opt {
	return func(s *Server) {
		s.hardTimeout = timeout
	}
}

// WithLog configures logger for the server.
func WithLog(log *zap.Logger) Opt {
	return func(s *Server) {
		s.logger = log
	}
}

// WithRequestSizeLimit limits the size of accepted and sent requests.
func WithRequestSizeLimit(limit int) Opt {
	return func(s *Server) {
		s.requestLimit = limit
	}
}

// WithMetrics will enable metrics collection in the server.
func WithMetrics() Opt {
	return func(s *Server) {
		s.metrics = newTracker(s.protocol)
	}
}

// WithQueueSize parametrize number of message that will be kept in queue
// and eventually processed by server. Otherwise stream is closed immediately.
//
// Defaults to 1000.
func WithQueueSize(size int) Opt {
	return func(s *Server) {
		s.queueSize = size
	}
}

// WithRequestsPerInterval parametrizes server rate limit.
//
// Defaults to 100 requests per second.
func WithRequestsPerInterval(n int, interval time.Duration) Opt {
	return func(s *Server) {
		s.requestsPerInterval = n
		s.interval = interval
	}
}

// Handler is a handler to be defined by the application.
// The remote peer is available through ContextPeerID.
type Handler func(context.Context, []byte) ([]byte, error)

// StreamHandler is a handler that writes the response to the stream directly.
type StreamHandler func(context.Context, []byte, io.ReadWriter) error

// ServerError is used by the client to represent an error returned by the server.
type ServerError struct {
	msg string
}

// NewServerError creates a ServerError with the message.
func NewServerError(msg string) *ServerError {
	return &ServerError{msg: msg}
}

func (*ServerError) Is(target error) bool {
	_, ok := target.(*ServerError)
	return ok
}

func (err *ServerError) Error() string {
	return fmt.Sprintf("peer error: %s", err.msg)
}

// Host is the subset of the libp2p host used by the server.
type Host interface {
	SetStreamHandler(protocol.ID, network.StreamHandler)
	NewStream(context.Context, peer.ID, ...protocol.ID) (network.Stream, error)
	Network() network.Network
}

type peerIDKey struct{}

func withPeerID(ctx context.Context, pid peer.ID) context.Context {
	return context.WithValue(ctx, peerIDKey{}, pid)
}

// ContextPeerID retrieves the ID of the peer being served from the context.
func ContextPeerID(ctx context.Context) (peer.ID, bool) {
	pid, ok := ctx.Value(peerIDKey{}).(peer.ID)
	return pid, ok
}

// Server for the Handler.
type Server struct {
	logger              *zap.Logger
	protocol            string
	handler             StreamHandler
	timeout             time.Duration
	hardTimeout         time.Duration
	requestLimit        int
	queueSize           int
	requestsPerInterval int
	interval            time.Duration

	metrics *tracker // metrics can be nil

	h Host
}

// New server for the handler.
func New(h Host, proto string, handler StreamHandler, opts ...Opt) *Server {
	srv := &Server{
		logger:              zap.NewNop(),
		protocol:            proto,
		handler:             handler,
		h:                   h,
		timeout:             25 * time.Second,
		hardTimeout:         5 * time.Minute,
		requestLimit:        10240,
		queueSize:           1000,
		requestsPerInterval: 100,
		interval:            time.Second,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

type request struct {
	stream   network.Stream
	received time.Time
}

// Run serves incoming requests until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	limit := rate.NewLimiter(rate.Every(s.interval/time.Duration(s.requestsPerInterval)), s.requestsPerInterval)
	queue := make(chan request, s.queueSize)
	if s.metrics != nil {
		s.metrics.targetQueue.Set(float64(s.queueSize))
		s.metrics.targetRps.Set(float64(limit.Limit()))
	}
	s.h.SetStreamHandler(protocol.ID(s.protocol), func(stream network.Stream) {
		select {
		case queue <- request{stream: stream, received: time.Now()}:
			if s.metrics != nil {
				s.metrics.queue.Set(float64(len(queue)))
				s.metrics.accepted.Inc()
			}
		default:
			if s.metrics != nil {
				s.metrics.dropped.Inc()
			}
			stream.Reset()
		}
	})

	var eg errgroup.Group
	eg.SetLimit(s.queueSize)
	for {
		select {
		case <-ctx.Done():
			eg.Wait()
			return nil
		case req := <-queue:
			if err := limit.Wait(ctx); err != nil {
				req.stream.Reset()
				eg.Wait()
				return nil
			}
			eg.Go(func() error {
				ok := s.queueHandler(ctx, req.stream)
				if s.metrics != nil {
					s.metrics.serverLatency.Observe(time.Since(req.received).Seconds())
					if ok {
						s.metrics.completed.Inc()
					} else {
						s.metrics.failed.Inc()
					}
				}
				return nil
			})
		}
	}
}

func (s *Server) queueHandler(ctx context.Context, stream network.Stream) bool {
	dadj := newDeadlineAdjuster(stream, s.timeout, s.hardTimeout)
	defer dadj.Close()
	logger := s.logger.With(
		zap.String("protocol", s.protocol),
		zap.Stringer("remotePeer", stream.Conn().RemotePeer()),
		zap.Stringer("remoteMultiaddr", stream.Conn().RemoteMultiaddr()),
	)
	rd := bufio.NewReader(dadj)
	size, err := varint.ReadUvarint(rd)
	if err != nil {
		logger.Debug("initial read failed", zap.Error(err))
		return false
	}
	if size > uint64(s.requestLimit) {
		logger.Warn("request limit overflow",
			zap.Int("limit", s.requestLimit),
			zap.Uint64("request", size),
		)
		stream.Reset()
		return false
	}
	buf := make([]byte, size)
	if _, err = io.ReadFull(rd, buf); err != nil {
		logger.Debug("error reading request", zap.Error(err))
		return false
	}
	start := time.Now()
	ctx = withPeerID(log.WithNewRequestID(ctx), stream.Conn().RemotePeer())
	if err = s.handler(ctx, buf, dadj); err != nil {
		logger.Debug("handler reported error", log.ZContext(ctx), zap.Error(err))
		return false
	}
	logger.Debug("protocol handler execution time",
		log.ZContext(ctx),
		zap.Duration("duration", time.Since(start)),
	)
	return true
}

// Request sends a binary request to the peer and waits for the response.
func (s *Server) Request(ctx context.Context, pid peer.ID, req []byte) ([]byte, error) {
	start := time.Now()
	data, err := s.request(ctx, pid, req)
	took := time.Since(start).Seconds()
	s.logger.Debug("request execution time",
		zap.String("protocol", s.protocol),
		zap.Stringer("peer", pid),
		zap.Float64("seconds", took),
		zap.Error(err),
	)
	switch {
	case s.metrics == nil:
	case errors.Is(err, &ServerError{}):
		s.metrics.clientServerError.Inc()
		s.metrics.clientLatency.Observe(took)
	case err != nil:
		s.metrics.clientFailed.Inc()
		s.metrics.clientLatencyFailure.Observe(took)
	default:
		s.metrics.clientSucceeded.Inc()
		s.metrics.clientLatency.Observe(took)
	}
	return data, err
}

func (s *Server) request(ctx context.Context, pid peer.ID, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req) > s.requestLimit {
		return nil, fmt.Errorf("%w: length %d, limit %d", ErrRequestTooLarge, len(req), s.requestLimit)
	}
	if s.h.Network().Connectedness(pid) != network.Connected {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, pid)
	}
	ctx, cancel := context.WithTimeout(ctx, s.hardTimeout)
	defer cancel()
	stream, err := s.h.NewStream(network.WithNoDial(ctx, "existing connection"), pid, protocol.ID(s.protocol))
	if err != nil {
		return nil, err
	}
	dadj := newDeadlineAdjuster(stream, s.timeout, s.hardTimeout)
	defer dadj.Close()
	// the stream doesn't observe ctx, unblock it on cancellation
	stop := context.AfterFunc(ctx, func() { stream.Reset() })
	defer stop()

	wr := bufio.NewWriter(dadj)
	if _, err := wr.Write(varint.ToUvarint(uint64(len(req)))); err != nil {
		return nil, s.streamError(ctx, stream, err)
	}
	if _, err := wr.Write(req); err != nil {
		return nil, s.streamError(ctx, stream, err)
	}
	if err := wr.Flush(); err != nil {
		return nil, s.streamError(ctx, stream, err)
	}
	var resp Response
	if _, err := codec.DecodeFrom(bufio.NewReader(dadj), &resp); err != nil {
		return nil, s.streamError(ctx, stream, err)
	}
	if resp.Error != "" {
		return nil, &ServerError{msg: resp.Error}
	}
	return resp.Data, nil
}

func (s *Server) streamError(ctx context.Context, stream network.Stream, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return fmt.Errorf("peer %s address %s: %w",
		stream.Conn().RemotePeer(), stream.Conn().RemoteMultiaddr(), err)
}

// NumAcceptedRequests returns the number of accepted requests for this server.
// It is used for testing.
func (s *Server) NumAcceptedRequests() int {
	if s.metrics == nil {
		return -1
	}
	m := &dto.Metric{}
	if err := s.metrics.accepted.Write(m); err != nil {
		panic("failed to get metric: " + err.Error())
	}
	return int(m.Counter.GetValue())
}

func writeResponse(w io.Writer, resp *Response) error {
	wr := bufio.NewWriter(w)
	if _, err := codec.EncodeTo(wr, resp); err != nil {
		return fmt.Errorf("failed to write response (len %d err len %d): %w",
			len(resp.Data), len(resp.Error), err)
	}
	if err := wr.Flush(); err != nil {
		return fmt.Errorf("failed to write response (len %d err len %d): %w",
			len(resp.Data), len(resp.Error), err)
	}
	return nil
}

// WrapHandler turns a Handler into a StreamHandler writing a Response.
func WrapHandler(handler Handler) StreamHandler {
	return func(ctx context.Context, req []byte, stream io.ReadWriter) error {
		buf, err := handler(ctx, req)
		var resp Response
		if err != nil {
			resp.Error = err.Error()
			if len(resp.Error) > maxErrorLength {
				resp.Error = resp.Error[:maxErrorLength]
			}
		} else {
			resp.Data = buf
		}
		return writeResponse(stream, &resp)
	}
}
