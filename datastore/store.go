// Package datastore is the local store of agents and operations, backed by
// sqlite.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/gossip"
	"github.com/timotree3/holochain/sql"
	"github.com/timotree3/holochain/sql/agents"
	"github.com/timotree3/holochain/sql/ops"
)

// ErrInvalidOp is returned when the hash of an operation doesn't match its
// content.
var ErrInvalidOp = errors.New("operation hash mismatch")

type config struct {
	cacheSize int
}

// Opt for configuring Store.
type Opt func(*Store)

// WithCacheSize sets the number of operations kept in memory.
func WithCacheSize(size int) Opt {
	return func(s *Store) {
		s.cfg.cacheSize = size
	}
}

// WithLogger configures the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store implements gossip.Store over the database and serves the records
// moved by fetch.
type Store struct {
	db     *sql.Database
	logger *zap.Logger
	cfg    config
	ops    OpCache

	mu   sync.RWMutex
	arcs []arc.Arc
}

var _ gossip.Store = (*Store)(nil)

// New creates a Store over the database.
func New(db *sql.Database, opts ...Opt) *Store {
	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		cfg:    config{cacheSize: 1000},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ops = NewOpCache(s.cfg.cacheSize)
	return s
}

// SetArcs replaces the arcs claimed by the local agents.
func (s *Store) SetArcs(arcs []arc.Arc) {
	normalized := arc.Normalize(arcs)
	s.mu.Lock()
	s.arcs = normalized
	s.mu.Unlock()
	s.logger.Info("storage arcs updated", zap.Stringers("arcs", normalized))
}

// Arcs returns the arcs claimed by the local agents.
func (s *Store) Arcs() []arc.Arc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.arcs)
}

// AgentsOverlapping returns the agent infos whose arc overlaps any of arcs.
func (s *Store) AgentsOverlapping(ctx context.Context, arcs []arc.Arc) ([]types.AgentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return agents.Overlapping(s.db, arcs)
}

// OpsInWindow returns the operations located within arcs and authored within
// the window, oldest first.
func (s *Store) OpsInWindow(ctx context.Context, arcs []arc.Arc, w gossip.TimeWindow) ([]gossip.TimedOp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rst []gossip.TimedOp
	err := ops.IterateInWindow(s.db, w.Start, w.End,
		func(h types.OpHash, loc arc.Loc, authoredAt types.Timestamp) bool {
			if arc.ContainsAny(arcs, loc) {
				rst = append(rst, gossip.TimedOp{Hash: h, AuthoredAt: authoredAt})
			}
			return ctx.Err() == nil
		})
	if err != nil {
		return nil, err
	}
	return rst, ctx.Err()
}

// Oldest returns the authoring time of the oldest stored operation.
func (s *Store) Oldest(ctx context.Context) (types.Timestamp, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return ops.Oldest(s.db)
}

// AddOp stores the operation. It returns false if it was already stored.
func (s *Store) AddOp(op *types.Op) (bool, error) {
	if !op.Verify() {
		return false, fmt.Errorf("%w: %s", ErrInvalidOp, op.Hash.ShortString())
	}
	if s.ops.Contains(op.Hash) {
		return false, nil
	}
	err := ops.Add(s.db, op)
	switch {
	case errors.Is(err, sql.ErrObjectExists):
		s.ops.Add(op.Hash, op)
		return false, nil
	case err != nil:
		return false, err
	}
	s.ops.Add(op.Hash, op)
	s.logger.Debug("stored op", zap.Object("op", op))
	return true, nil
}

// HasOp returns true if the operation is stored.
func (s *Store) HasOp(h types.OpHash) (bool, error) {
	if s.ops.Contains(h) {
		return true, nil
	}
	return ops.Has(s.db, h)
}

// GetOp returns the operation, or an error wrapping sql.ErrNotFound.
func (s *Store) GetOp(h types.OpHash) (*types.Op, error) {
	if op, ok := s.ops.Get(h); ok {
		return op, nil
	}
	op, err := ops.Get(s.db, h)
	if err != nil {
		return nil, err
	}
	s.ops.Add(h, op)
	return op, nil
}

// AddAgent stores the info unless a newer info of the agent is stored.
// It returns true if the info was stored.
func (s *Store) AddAgent(info *types.AgentInfo) (bool, error) {
	added, err := agents.Add(s.db, info)
	if err != nil {
		return false, err
	}
	if added {
		s.logger.Debug("stored agent info", zap.Object("info", info))
	}
	return added, nil
}

// GetAgent returns the info identified by the key, or an error wrapping
// sql.ErrNotFound if that version isn't stored.
func (s *Store) GetAgent(key types.AgentKey) (*types.AgentInfo, error) {
	return agents.GetByKey(s.db, key)
}

// PruneAgents deletes the agent infos that expired before now.
func (s *Store) PruneAgents(now types.Timestamp) (int, error) {
	n, err := agents.Prune(s.db, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned expired agent infos", zap.Int("count", n))
	}
	return n, nil
}
