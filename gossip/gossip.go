// Package gossip reconciles the agents and operations held by peers with
// overlapping storage arcs.
//
// A round is driven by the requester: the peers exchange their arcs, then
// compare filters of the agents and of the operations within consecutive
// time windows of their overlap, and finally move the records the other side
// is missing.
package gossip

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timotree3/holochain/p2p"
)

// Protocol is the identifier of the gossip stream protocol.
const Protocol = "/kitsune/gossip/1"

// Opt is for configuring Gossip.
type Opt func(*Gossip)

// WithLogger configures the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(g *Gossip) {
		g.logger = logger
	}
}

// WithConfig configures the gossip parameters.
func WithConfig(cfg Config) Opt {
	return func(g *Gossip) {
		g.cfg = cfg
	}
}

// WithClock configures the clock used for ticks and time windows.
func WithClock(clock clockwork.Clock) Opt {
	return func(g *Gossip) {
		g.clock = clock
	}
}

// Gossip periodically runs rounds with connected peers and answers the
// rounds they run with us.
type Gossip struct {
	logger    *zap.Logger
	cfg       Config
	clock     clockwork.Clock
	store     Store
	requester Requester
	transfer  Transfer
	peers     PeerSet

	mu       sync.Mutex
	sessions map[p2p.Peer]*session

	storeFailures atomic.Int64
}

// New creates a Gossip instance.
func New(store Store, requester Requester, transfer Transfer, peers PeerSet, opts ...Opt) *Gossip {
	g := &Gossip{
		logger:    zap.NewNop(),
		cfg:       DefaultConfig(),
		clock:     clockwork.NewRealClock(),
		store:     store,
		requester: requester,
		transfer:  transfer,
		peers:     peers,
		sessions:  make(map[p2p.Peer]*session),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run gossips with a few peers on every tick until the context is canceled.
func (g *Gossip) Run(ctx context.Context) error {
	g.logger.Info("starting gossip",
		zap.Duration("interval", g.cfg.Interval),
		zap.Int("peers per tick", g.cfg.PeersPerTick),
	)
	ticker := g.clock.NewTicker(g.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("gossip stopped")
			return nil
		case <-ticker.Chan():
			g.tick(ctx)
		}
	}
}

func (g *Gossip) tick(ctx context.Context) {
	peers := g.pick()
	if len(peers) == 0 {
		g.logger.Debug("no peers to gossip with")
		return
	}
	var eg errgroup.Group
	eg.SetLimit(g.cfg.MaxConcurrentRounds)
	for _, peer := range peers {
		eg.Go(func() error {
			g.RoundWith(ctx, peer)
			return nil
		})
	}
	eg.Wait()
}

// pick selects up to PeersPerTick random peers and drops the sessions of
// peers that are gone.
func (g *Gossip) pick() []p2p.Peer {
	peers := g.peers.GetPeers()
	g.mu.Lock()
	present := make(map[p2p.Peer]struct{}, len(peers))
	for _, peer := range peers {
		present[peer] = struct{}{}
	}
	for peer := range g.sessions {
		if _, ok := present[peer]; !ok {
			delete(g.sessions, peer)
		}
	}
	g.mu.Unlock()

	rand.Shuffle(len(peers), func(i, j int) {
		peers[i], peers[j] = peers[j], peers[i]
	})
	return peers[:min(len(peers), g.cfg.PeersPerTick)]
}

func (g *Gossip) session(peer p2p.Peer) *session {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[peer]
	if !ok {
		s = newSession(peer)
		g.sessions[peer] = s
	}
	return s
}

// RoundWith runs a single round with the peer. Rounds with the same peer
// run one at a time.
func (g *Gossip) RoundWith(ctx context.Context, peer p2p.Peer) (*RoundResult, error) {
	s := g.session(peer)
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := g.logger.With(
		zap.Stringer("peer", peer),
		zap.String("round", uuid.NewString()),
	)
	start := g.clock.Now()
	r := &round{
		logger:    logger,
		cfg:       g.cfg,
		clock:     g.clock,
		store:     g.store,
		requester: g.requester,
		transfer:  g.transfer,
		session:   s,
	}
	result, err := r.run(ctx)
	g.trackStore(err)
	label := resultLabel(result, err)
	roundsCount.WithLabelValues(label).Inc()
	roundDuration.WithLabelValues(label).Observe(g.clock.Since(start).Seconds())
	switch {
	case err != nil:
		logger.Debug("gossip round failed",
			zap.Bool("remote", remoteError(err)),
			zap.Duration("duration", g.clock.Since(start)),
			zap.Error(err),
		)
		return nil, err
	case result.Transferred():
		logger.Info("gossip round completed",
			zap.Object("result", result),
			zap.Duration("duration", g.clock.Since(start)),
		)
	default:
		logger.Debug("gossip round completed",
			zap.Object("result", result),
			zap.Duration("duration", g.clock.Since(start)),
		)
	}
	return result, nil
}

func resultLabel(result *RoundResult, err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return resultDecode
	case errors.Is(err, ErrTimeout):
		return resultTimeout
	case errors.Is(err, ErrStoreUnavailable):
		return resultStore
	case err != nil:
		return resultFailed
	case result.NoOverlap:
		return resultNoOverlap
	}
	return resultSynced
}

// trackStore counts consecutive store failures. Other errors leave the
// count as is.
func (g *Gossip) trackStore(err error) {
	switch {
	case err == nil:
		g.storeFailures.Store(0)
	case errors.Is(err, ErrStoreUnavailable):
		if n := g.storeFailures.Add(1); n == int64(g.cfg.UnhealthyAfter) {
			g.logger.Error("gossip is unhealthy",
				zap.Int64("consecutive store failures", n),
				zap.Error(err),
			)
		}
	}
}

// Healthy returns false once the store failed UnhealthyAfter times in a row.
func (g *Gossip) Healthy() bool {
	return g.storeFailures.Load() < int64(g.cfg.UnhealthyAfter)
}
