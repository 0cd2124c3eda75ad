package gossip

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/log"
	"github.com/timotree3/holochain/p2p/server"
)

// Handle answers a gossip request from a peer running a round with us.
// The responder keeps no state between requests.
func (g *Gossip) Handle(ctx context.Context, data []byte) ([]byte, error) {
	req, err := decodeRequest(data)
	if err != nil {
		g.logger.Debug("failed to decode gossip request", log.ZContext(ctx), zap.Error(err))
		return nil, err
	}
	requestsHandled.WithLabelValues(req.Type().String()).Inc()
	resp, err := g.respond(ctx, req)
	g.trackStore(err)
	if err != nil {
		g.logger.Debug("failed to serve gossip request",
			log.ZContext(ctx),
			zap.Stringer("type", req.Type()),
			zap.Error(err),
		)
		return nil, err
	}
	return encodeMessage(resp)
}

func (g *Gossip) respond(ctx context.Context, req Message) (Message, error) {
	switch req := req.(type) {
	case *ArcsRequest:
		return g.respondArcs(ctx)
	case *AgentsRequest:
		return g.respondAgents(ctx, req)
	case *OpsRequest:
		return g.respondOps(ctx, req)
	}
	panic(fmt.Sprintf("BUG: unexpected request %T", req))
}

func (g *Gossip) respondArcs(ctx context.Context) (*ArcsResponse, error) {
	oldest, ok, err := g.store.Oldest(ctx)
	if err != nil {
		return nil, storeError("oldest", err)
	}
	resp := &ArcsResponse{ArcSet{Arcs: g.store.Arcs()}}
	if ok {
		resp.Oldest = &oldest
	}
	return resp, nil
}

func (g *Gossip) respondAgents(ctx context.Context, req *AgentsRequest) (*AgentsResponse, error) {
	overlap := arc.IntersectAll(req.Overlap, g.store.Arcs())
	if len(overlap) == 0 {
		return &AgentsResponse{NoOverlap: true}, nil
	}
	local, err := g.store.AgentsOverlapping(ctx, overlap)
	if err != nil {
		return nil, storeError("agents", err)
	}
	missing, err := ResolveAgents(local, req.Filter, len(req.Filter) > 0)
	if err != nil {
		return nil, err
	}
	filter, _, err := AgentSnapshot(local, nil, g.cfg.AgentFPRate)
	if err != nil {
		return nil, fmt.Errorf("agent snapshot: %w", err)
	}
	return &AgentsResponse{Missing: missing, Filter: filter}, nil
}

func (g *Gossip) respondOps(ctx context.Context, req *OpsRequest) (*OpsResponse, error) {
	w, ok := outcomeWindow(req.Outcome)
	overlap := arc.IntersectAll(req.Overlap, g.store.Arcs())
	if !ok || len(overlap) == 0 {
		return &OpsResponse{Outcome: NoOverlap{}}, nil
	}
	local, err := g.store.OpsInWindow(ctx, overlap, w)
	if err != nil {
		return nil, storeError("ops", err)
	}
	missing, err := ResolveOps(local, req.Outcome)
	if err != nil {
		return nil, err
	}
	outcome, err := LocalOutcome(local, w, g.cfg.OpFPRate)
	if err != nil {
		return nil, fmt.Errorf("op snapshot: %w", err)
	}
	return &OpsResponse{Missing: missing, Outcome: outcome}, nil
}

// StreamHandler returns the handler to register with the gossip server.
func (g *Gossip) StreamHandler() server.StreamHandler {
	return server.WrapHandler(g.Handle)
}

// remoteError reports whether err was returned by the peer's handler.
func remoteError(err error) bool {
	var serr *server.ServerError
	return errors.As(err, &serr)
}
