package gossip

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/p2p"
)

// RoundResult summarizes a completed round.
type RoundResult struct {
	Peer p2p.Peer
	// NoOverlap is set if the peers share no part of the location space.
	NoOverlap bool
	Windows   int

	FetchedAgents, PushedAgents int
	FetchedOps, PushedOps       int
}

// Transferred returns true if the round moved any records.
func (r *RoundResult) Transferred() bool {
	return r.FetchedAgents+r.PushedAgents+r.FetchedOps+r.PushedOps > 0
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *RoundResult) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("peer", r.Peer.String())
	enc.AddBool("no_overlap", r.NoOverlap)
	enc.AddInt("windows", r.Windows)
	enc.AddInt("fetched_agents", r.FetchedAgents)
	enc.AddInt("pushed_agents", r.PushedAgents)
	enc.AddInt("fetched_ops", r.FetchedOps)
	enc.AddInt("pushed_ops", r.PushedOps)
	return nil
}

// round is a single reconciliation with a peer, run by the requester side.
type round struct {
	logger    *zap.Logger
	cfg       Config
	clock     clockwork.Clock
	store     Store
	requester Requester
	transfer  Transfer
	session   *session

	result RoundResult
}

func (r *round) run(ctx context.Context) (*RoundResult, error) {
	defer r.session.transition(StateIdle)
	r.result.Peer = r.session.peer

	local := r.store.Arcs()
	oldest, hasOldest, err := r.store.Oldest(ctx)
	if err != nil {
		return nil, storeError("oldest", err)
	}
	req := &ArcsRequest{ArcSet{Arcs: local}}
	if hasOldest {
		req.Oldest = &oldest
	}
	var resp ArcsResponse
	if err := r.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	r.session.transition(StateArcsExchanged)

	overlap := arc.IntersectAll(local, resp.Arcs)
	if len(overlap) == 0 {
		r.logger.Debug("no overlap with peer",
			zap.Array("local", arcList(local)),
			zap.Array("remote", arcList(resp.Arcs)),
		)
		r.result.NoOverlap = true
		return &r.result, nil
	}

	done, err := r.syncAgents(ctx, overlap)
	if err != nil {
		return nil, err
	}
	if done {
		r.result.NoOverlap = true
		return &r.result, nil
	}
	from, ok := oldestOf(oldest, hasOldest, resp.Oldest)
	if !ok {
		return &r.result, nil
	}
	for i, w := range r.windows(from) {
		done, err := r.syncOps(ctx, overlap, w)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if i > 0 {
			r.session.advance(w, from)
		}
	}
	return &r.result, nil
}

func oldestOf(local types.Timestamp, hasLocal bool, remote *types.Timestamp) (types.Timestamp, bool) {
	switch {
	case hasLocal && remote != nil:
		return min(local, *remote), true
	case hasLocal:
		return local, true
	case remote != nil:
		return *remote, true
	}
	return 0, false
}

// windows selects the time windows to compare. The newest window is compared
// in every round. The older history is covered over successive rounds,
// continuing below the last window the previous round with this peer reached.
func (r *round) windows(from types.Timestamp) []TimeWindow {
	now := types.TimestampFromTime(r.clock.Now())
	newest := SplitWindows(from, now, r.cfg.MaxWindow, 1)[0]
	if newest.Start <= from {
		return []TimeWindow{newest}
	}
	end := newest.Start - 1
	if cursor, ok := r.session.resume(); ok && cursor >= from && cursor < newest.Start {
		end = cursor
	}
	older := SplitWindows(from, end, r.cfg.MaxWindow, r.cfg.MaxWindowsPerRound-1)
	return append([]TimeWindow{newest}, older...)
}

// syncAgents compares the agents within the overlap. It returns true if the
// peer reported that there is no longer any overlap.
func (r *round) syncAgents(ctx context.Context, overlap []arc.Arc) (bool, error) {
	r.session.transition(StateWindowSelected)
	local, err := r.store.AgentsOverlapping(ctx, overlap)
	if err != nil {
		return false, storeError("agents", err)
	}
	filter, _, err := AgentSnapshot(local, nil, r.cfg.AgentFPRate)
	if err != nil {
		return false, fmt.Errorf("agent snapshot: %w", err)
	}
	var resp AgentsResponse
	if err := r.call(ctx, &AgentsRequest{Overlap: overlap, Filter: filter}, &resp); err != nil {
		return false, err
	}
	r.session.transition(StateFilterExchanged)

	if resp.NoOverlap {
		r.logger.Debug("peer reported no overlap for agents", zap.Array("overlap", arcList(overlap)))
		return true, nil
	}
	push, err := ResolveAgents(local, resp.Filter, len(resp.Filter) > 0)
	if err != nil {
		return false, err
	}
	r.session.transition(StateOutcomeResolved)

	r.session.transition(StatePushPull)
	if len(resp.Missing) > 0 {
		if err := r.transfer.FetchAgents(ctx, r.session.peer, resp.Missing); err != nil {
			return false, transferError("fetch agents", err)
		}
		fetchedAgents.Add(float64(len(resp.Missing)))
		r.result.FetchedAgents += len(resp.Missing)
	}
	if len(push) > 0 {
		if err := r.transfer.PushAgents(ctx, r.session.peer, push); err != nil {
			return false, transferError("push agents", err)
		}
		pushedAgents.Add(float64(len(push)))
		r.result.PushedAgents += len(push)
	}
	return false, nil
}

// syncOps compares the operations authored within the window. It returns
// true if the peer reported that there is no longer any overlap.
func (r *round) syncOps(ctx context.Context, overlap []arc.Arc, w TimeWindow) (bool, error) {
	r.session.transition(StateWindowSelected)
	r.result.Windows++
	local, err := r.store.OpsInWindow(ctx, overlap, w)
	if err != nil {
		return false, storeError("ops", err)
	}
	outcome, err := LocalOutcome(local, w, r.cfg.OpFPRate)
	if err != nil {
		return false, fmt.Errorf("op snapshot: %w", err)
	}
	var resp OpsResponse
	if err := r.call(ctx, &OpsRequest{Overlap: overlap, Outcome: outcome}, &resp); err != nil {
		return false, err
	}
	r.session.transition(StateFilterExchanged)

	if _, ok := resp.Outcome.(NoOverlap); ok {
		r.logger.Debug("peer reported no overlap", zap.Object("window", w))
		return true, nil
	}
	if rw, _ := outcomeWindow(resp.Outcome); rw != w {
		return false, fmt.Errorf("%w: outcome for window %s, requested %s", ErrDecode, rw, w)
	}
	push, err := ResolveOps(local, resp.Outcome)
	if err != nil {
		return false, err
	}
	r.session.transition(StateOutcomeResolved)

	r.session.transition(StatePushPull)
	if len(resp.Missing) > 0 {
		if err := r.transfer.FetchOps(ctx, r.session.peer, resp.Missing); err != nil {
			return false, transferError("fetch ops", err)
		}
		fetchedOps.Add(float64(len(resp.Missing)))
		r.result.FetchedOps += len(resp.Missing)
	}
	if len(push) > 0 {
		if err := r.transfer.PushOps(ctx, r.session.peer, push); err != nil {
			return false, transferError("push ops", err)
		}
		pushedOps.Add(float64(len(push)))
		r.result.PushedOps += len(push)
	}
	return false, nil
}

func (r *round) call(ctx context.Context, req, resp Message) error {
	data, err := encodeMessage(req)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RoundTimeout)
	defer cancel()
	raw, err := r.requester.Request(ctx, r.session.peer, data)
	if err != nil {
		return transferError(req.Type().String()+" request", err)
	}
	return decodeResponse(raw, resp)
}

func storeError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, what, err)
}

// transferError marks errors caused by a silent peer as timeouts.
func transferError(what string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

type arcList []arc.Arc

func (a arcList) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, x := range a {
		if err := enc.AppendObject(x); err != nil {
			return err
		}
	}
	return nil
}
