package gossip

import (
	"github.com/timotree3/holochain/bloom"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/gossip/key"
)

// TimedOp is the part of an operation relevant to reconciliation.
type TimedOp struct {
	Hash       types.OpHash
	AuthoredAt types.Timestamp
}

// AgentSnapshot builds a filter of the agents whose arc overlaps within, or
// of all agents if within is nil. If no agent qualifies there is no filter
// and the returned bool is false.
func AgentSnapshot(agents []types.AgentInfo, within *arc.Arc, fpRate float64) (bloom.Encoded, bool, error) {
	keys := make([]key.Key, 0, len(agents))
	for i := range agents {
		if within != nil && !agents[i].Arc.Overlaps(*within) {
			continue
		}
		keys = append(keys, key.FromAgent(&agents[i]))
	}
	if len(keys) == 0 {
		return nil, false, nil
	}
	enc, err := bloom.Build(keys, fpRate).Encode()
	if err != nil {
		return nil, false, err
	}
	filterBytes.WithLabelValues(kindAgent).Observe(float64(len(enc)))
	return enc, true, nil
}

// OpSnapshot builds a filter of the operation hashes. Unlike agents, an
// empty set still yields a filter.
func OpSnapshot(hashes []types.OpHash, fpRate float64) (bloom.Encoded, error) {
	f := bloom.New(uint(len(hashes)), fpRate)
	for _, h := range hashes {
		f.Set(key.Op(h))
	}
	enc, err := f.Encode()
	if err != nil {
		return nil, err
	}
	filterBytes.WithLabelValues(kindOp).Observe(float64(len(enc)))
	return enc, nil
}

// LocalOutcome describes the local operations within the window:
// MissingAllHashes if there are none, HaveHashes with their filter otherwise.
func LocalOutcome(ops []TimedOp, window TimeWindow, fpRate float64) (TimedOutcome, error) {
	var hashes []types.OpHash
	for _, op := range ops {
		if window.Contains(op.AuthoredAt) {
			hashes = append(hashes, op.Hash)
		}
	}
	if len(hashes) == 0 {
		return MissingAllHashes{Window: window}, nil
	}
	filter, err := OpSnapshot(hashes, fpRate)
	if err != nil {
		return nil, err
	}
	return HaveHashes{Filter: filter, Window: window}, nil
}
