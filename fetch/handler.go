package fetch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/sql"
)

var (
	// errInternal is returned from the peer when the peer encounters an internal error.
	errInternal = errors.New("unspecified error returned by peer")
	// errBadRequest is returned to the peer if the request was not well formed.
	errBadRequest = errors.New("invalid request")
)

type handler struct {
	logger *zap.Logger
	store  Store
}

func newHandler(store Store, logger *zap.Logger) *handler {
	return &handler{
		logger: logger,
		store:  store,
	}
}

// handleFetch returns the requested records that are stored locally.
func (h *handler) handleFetch(ctx context.Context, data []byte) ([]byte, error) {
	var req RequestBatch
	if err := codec.Decode(data, &req); err != nil {
		h.logger.Debug("failed to decode fetch request", zap.Error(err))
		return nil, errBadRequest
	}
	resp := ResponseBatch{ID: req.ID}
	size := 0
	for _, hash := range req.Ops {
		op, err := h.store.GetOp(hash)
		switch {
		case errors.Is(err, sql.ErrNotFound):
			servedMissing.Inc()
			continue
		case err != nil:
			h.logger.Warn("failed to load op", hash.Field(), zap.Error(err))
			return nil, errInternal
		}
		if size+len(op.Data) > maxBatchData {
			break
		}
		size += len(op.Data)
		resp.Ops = append(resp.Ops, *op)
	}
	for _, key := range req.Agents {
		info, err := h.store.GetAgent(key)
		switch {
		case errors.Is(err, sql.ErrNotFound):
			servedMissing.Inc()
			continue
		case err != nil:
			h.logger.Warn("failed to load agent", key.Agent.Field(), zap.Error(err))
			return nil, errInternal
		}
		resp.Agents = append(resp.Agents, *info)
	}
	servedOps.Add(float64(len(resp.Ops)))
	servedAgents.Add(float64(len(resp.Agents)))
	h.logger.Debug("served fetch request",
		zap.Object("request", &req),
		zap.Int("ops", len(resp.Ops)),
		zap.Int("agents", len(resp.Agents)),
	)
	return codec.MustEncode(&resp), nil
}

// handlePush stores the records pushed by the peer. Operations outside of the
// local arcs are dropped.
func (h *handler) handlePush(ctx context.Context, data []byte) ([]byte, error) {
	var batch PushBatch
	if err := codec.Decode(data, &batch); err != nil {
		h.logger.Debug("failed to decode push", zap.Error(err))
		return nil, errBadRequest
	}
	arcs := h.store.Arcs()
	stored := 0
	for i := range batch.Ops {
		op := &batch.Ops[i]
		if !arc.ContainsAny(arcs, op.Loc()) {
			droppedOps.Inc()
			continue
		}
		if !op.Verify() {
			return nil, fmt.Errorf("%w: op %s", errBadRequest, op.Hash.ShortString())
		}
		added, err := h.store.AddOp(op)
		if err != nil {
			h.logger.Warn("failed to store pushed op", op.Hash.Field(), zap.Error(err))
			return nil, errInternal
		}
		if added {
			stored++
		}
	}
	for i := range batch.Agents {
		if _, err := h.store.AddAgent(&batch.Agents[i]); err != nil {
			h.logger.Warn("failed to store pushed agent", batch.Agents[i].Agent.Field(), zap.Error(err))
			return nil, errInternal
		}
	}
	receivedOps.Add(float64(stored))
	receivedAgents.Add(float64(len(batch.Agents)))
	return nil, nil
}
