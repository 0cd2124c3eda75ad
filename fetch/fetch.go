// Package fetch moves operations and agent infos between peers once a gossip
// round found them missing on one side.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/libp2p/go-libp2p/core/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/gossip"
	"github.com/timotree3/holochain/p2p"
	"github.com/timotree3/holochain/p2p/server"
	"github.com/timotree3/holochain/sql"
)

const (
	fetchProtocol protocol.ID = "/kitsune/fetch/1"
	pushProtocol  protocol.ID = "/kitsune/push/1"

	fetchRequestLimit = 1 << 17
	pushRequestLimit  = maxBatchData + 1<<20
)

var errUnexpectedID = errors.New("response for another request")

// Config is the configuration of the fetch component.
type Config struct {
	// BatchSize is the number of records requested or pushed at once.
	BatchSize           int           `mapstructure:"batchsize"`
	RequestTimeout      time.Duration `mapstructure:"request-timeout"`
	RequestHardTimeout  time.Duration `mapstructure:"request-hard-timeout"`
	EnableServerMetrics bool          `mapstructure:"servers-metrics"`
	QueueSize           int           `mapstructure:"queue-size"`
	RequestsPerInterval int           `mapstructure:"requests-per-interval"`
	Interval            time.Duration `mapstructure:"interval"`
	// PendingSize bounds the number of operations tracked as being fetched.
	PendingSize int `mapstructure:"pending-size"`
}

// DefaultConfig is the default config for the fetch component.
func DefaultConfig() Config {
	return Config{
		BatchSize:           100,
		RequestTimeout:      25 * time.Second,
		RequestHardTimeout:  5 * time.Minute,
		QueueSize:           200,
		RequestsPerInterval: 100,
		Interval:            time.Second,
		PendingSize:         10000,
	}
}

// Validate checks the configuration for values that can't work.
func (cfg *Config) Validate() error {
	if cfg.BatchSize <= 0 || cfg.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch size must be in [1, %d], got %d", MaxBatchSize, cfg.BatchSize)
	}
	if cfg.PendingSize <= 0 {
		return fmt.Errorf("pending size must be positive, got %d", cfg.PendingSize)
	}
	return nil
}

// Option is a type to configure a fetcher.
type Option func(*Fetch)

// WithLogger configures the logger for the fetcher.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetch) {
		f.logger = logger
	}
}

// WithConfig configures the config for the fetcher.
func WithConfig(c Config) Option {
	return func(f *Fetch) {
		f.cfg = c
	}
}

// Fetch requests missing records from peers and pushes records to peers
// that miss them.
type Fetch struct {
	logger *zap.Logger
	cfg    Config
	store  Store

	servers map[protocol.ID]requester
	// pending holds the operations being fetched, so that concurrent
	// rounds don't request the same operation twice.
	pending *lru.Cache[types.OpHash, struct{}]
}

var _ gossip.Transfer = (*Fetch)(nil)

// NewFetch creates a new Fetch instance serving the store over the host.
func NewFetch(store Store, host server.Host, opts ...Option) *Fetch {
	f := &Fetch{
		logger:  zap.NewNop(),
		cfg:     DefaultConfig(),
		store:   store,
		servers: make(map[protocol.ID]requester),
	}
	for _, opt := range opts {
		opt(f)
	}
	pending, err := lru.New[types.OpHash, struct{}](f.cfg.PendingSize)
	if err != nil {
		panic("BUG: could not initialize pending cache: " + err.Error())
	}
	f.pending = pending

	h := newHandler(store, f.logger)
	f.registerServer(host, fetchProtocol, server.WrapHandler(h.handleFetch), fetchRequestLimit)
	f.registerServer(host, pushProtocol, server.WrapHandler(h.handlePush), pushRequestLimit)
	return f
}

func (f *Fetch) registerServer(host server.Host, proto protocol.ID, handler server.StreamHandler, limit int) {
	opts := []server.Opt{
		server.WithTimeout(f.cfg.RequestTimeout),
		server.WithHardTimeout(f.cfg.RequestHardTimeout),
		server.WithLog(f.logger),
		server.WithRequestSizeLimit(limit),
		server.WithQueueSize(f.cfg.QueueSize),
		server.WithRequestsPerInterval(f.cfg.RequestsPerInterval, f.cfg.Interval),
	}
	if f.cfg.EnableServerMetrics {
		opts = append(opts, server.WithMetrics())
	}
	f.servers[proto] = server.New(host, string(proto), handler, opts...)
}

// Run serves the fetch protocols until ctx is canceled.
func (f *Fetch) Run(ctx context.Context) error {
	var eg errgroup.Group
	for _, srv := range f.servers {
		eg.Go(func() error {
			return srv.Run(ctx)
		})
	}
	return eg.Wait()
}

// FetchOps requests the operations from the peer and stores the valid ones.
// Operations already stored or being fetched by another caller are skipped.
func (f *Fetch) FetchOps(ctx context.Context, peer p2p.Peer, hashes []types.OpHash) error {
	want := make([]types.OpHash, 0, len(hashes))
	defer func() {
		for _, h := range want {
			f.pending.Remove(h)
		}
	}()
	for _, h := range hashes {
		has, err := f.store.HasOp(h)
		if err != nil {
			return fmt.Errorf("has op: %w", err)
		}
		if has {
			continue
		}
		if found, _ := f.pending.ContainsOrAdd(h, struct{}{}); found {
			pendingHits.Inc()
			continue
		}
		want = append(want, h)
	}
	for batch := range slices.Chunk(want, f.cfg.BatchSize) {
		resp, err := f.fetch(ctx, peer, &RequestBatch{Ops: batch})
		if err != nil {
			return err
		}
		requested := make(map[types.OpHash]struct{}, len(batch))
		for _, h := range batch {
			requested[h] = struct{}{}
		}
		for i := range resp.Ops {
			op := &resp.Ops[i]
			if _, ok := requested[op.Hash]; !ok {
				return fmt.Errorf("peer %s served unrequested op %s", peer, op.Hash.ShortString())
			}
			if _, err := f.store.AddOp(op); err != nil {
				return fmt.Errorf("add op from %s: %w", peer, err)
			}
			delete(requested, op.Hash)
		}
		receivedOps.Add(float64(len(resp.Ops)))
		if len(requested) > 0 {
			f.logger.Debug("peer didn't serve all ops",
				zap.Stringer("peer", peer),
				zap.Int("requested", len(batch)),
				zap.Int("missing", len(requested)),
			)
		}
	}
	return nil
}

// FetchAgents requests the agent infos from the peer and stores them.
func (f *Fetch) FetchAgents(ctx context.Context, peer p2p.Peer, keys []types.AgentKey) error {
	for batch := range slices.Chunk(keys, f.cfg.BatchSize) {
		resp, err := f.fetch(ctx, peer, &RequestBatch{Agents: batch})
		if err != nil {
			return err
		}
		requested := make(map[types.AgentKey]struct{}, len(batch))
		for _, k := range batch {
			requested[k] = struct{}{}
		}
		for i := range resp.Agents {
			info := &resp.Agents[i]
			if _, ok := requested[info.Key()]; !ok {
				return fmt.Errorf("peer %s served unrequested agent %s", peer, info.Agent.ShortString())
			}
			if _, err := f.store.AddAgent(info); err != nil {
				return fmt.Errorf("add agent from %s: %w", peer, err)
			}
		}
		receivedAgents.Add(float64(len(resp.Agents)))
	}
	return nil
}

func (f *Fetch) fetch(ctx context.Context, peer p2p.Peer, req *RequestBatch) (*ResponseBatch, error) {
	req.setID()
	data, err := f.servers[fetchProtocol].Request(ctx, peer, codec.MustEncode(req))
	if err != nil {
		peerErrors.Inc()
		return nil, fmt.Errorf("fetch %s from %s: %w", req.ID.ShortString(), peer, err)
	}
	var resp ResponseBatch
	if err := codec.Decode(data, &resp); err != nil {
		peerErrors.Inc()
		return nil, fmt.Errorf("decode response from %s: %w", peer, err)
	}
	if resp.ID != req.ID {
		peerErrors.Inc()
		return nil, fmt.Errorf("%w: %s, expected %s", errUnexpectedID, resp.ID.ShortString(), req.ID.ShortString())
	}
	f.logger.Debug("fetched batch",
		zap.Stringer("peer", peer),
		zap.Object("request", req),
		zap.Int("ops", len(resp.Ops)),
		zap.Int("agents", len(resp.Agents)),
	)
	return &resp, nil
}

// PushOps sends the stored operations to the peer. Unknown operations are
// skipped.
func (f *Fetch) PushOps(ctx context.Context, peer p2p.Peer, hashes []types.OpHash) error {
	var (
		batch PushBatch
		size  int
	)
	for _, h := range hashes {
		op, err := f.store.GetOp(h)
		switch {
		case errors.Is(err, sql.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("get op: %w", err)
		}
		if len(batch.Ops) == f.cfg.BatchSize || size+len(op.Data) > maxBatchData {
			if err := f.push(ctx, peer, &batch); err != nil {
				return err
			}
			batch, size = PushBatch{}, 0
		}
		batch.Ops = append(batch.Ops, *op)
		size += len(op.Data)
	}
	if len(batch.Ops) == 0 {
		return nil
	}
	return f.push(ctx, peer, &batch)
}

// PushAgents sends the stored agent infos to the peer. Infos that are no
// longer stored, for example because a newer one replaced them, are skipped.
func (f *Fetch) PushAgents(ctx context.Context, peer p2p.Peer, keys []types.AgentKey) error {
	var infos []types.AgentInfo
	for _, k := range keys {
		info, err := f.store.GetAgent(k)
		switch {
		case errors.Is(err, sql.ErrNotFound):
			continue
		case err != nil:
			return fmt.Errorf("get agent: %w", err)
		}
		infos = append(infos, *info)
	}
	for batch := range slices.Chunk(infos, f.cfg.BatchSize) {
		if err := f.push(ctx, peer, &PushBatch{Agents: batch}); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetch) push(ctx context.Context, peer p2p.Peer, batch *PushBatch) error {
	if _, err := f.servers[pushProtocol].Request(ctx, peer, codec.MustEncode(batch)); err != nil {
		peerErrors.Inc()
		return fmt.Errorf("push to %s: %w", peer, err)
	}
	pushedOps.Add(float64(len(batch.Ops)))
	pushedAgents.Add(float64(len(batch.Agents)))
	return nil
}
