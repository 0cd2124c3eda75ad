package gossip

import (
	"fmt"

	"github.com/timotree3/holochain/bloom"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/gossip/key"
)

// ResolveOps returns the local operations the remote peer is missing
// according to its outcome, in the order they appear in local.
func ResolveOps(local []TimedOp, outcome TimedOutcome) ([]types.OpHash, error) {
	var missing []types.OpHash
	switch o := outcome.(type) {
	case NoOverlap:
		return nil, nil
	case MissingAllHashes:
		for _, op := range local {
			if o.Window.Contains(op.AuthoredAt) {
				missing = append(missing, op.Hash)
			}
		}
	case HaveHashes:
		filter, err := bloom.Decode(o.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: op filter: %w", ErrDecode, err)
		}
		for _, op := range local {
			if o.Window.Contains(op.AuthoredAt) && !filter.Check(key.Op(op.Hash)) {
				missing = append(missing, op.Hash)
			}
		}
	default:
		panic(fmt.Sprintf("BUG: unexpected outcome %T", outcome))
	}
	return missing, nil
}

// ResolveAgents returns the keys of the local agents absent from the remote
// filter. Without a filter the remote peer is missing every agent.
func ResolveAgents(local []types.AgentInfo, filter bloom.Encoded, ok bool) ([]types.AgentKey, error) {
	missing := make([]types.AgentKey, 0, len(local))
	if !ok {
		for i := range local {
			missing = append(missing, local[i].Key())
		}
		return missing, nil
	}
	f, err := bloom.Decode(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: agent filter: %w", ErrDecode, err)
	}
	for i := range local {
		if !f.Check(key.FromAgent(&local[i])) {
			missing = append(missing, local[i].Key())
		}
	}
	return missing, nil
}
