package gossip

import (
	"context"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/p2p"
)

//go:generate mockgen -package=gossip -destination=./mocks.go -source=./interface.go

// Store is the local view of agents and operations that rounds reconcile.
type Store interface {
	// Arcs returns the arcs the local agents claim to store.
	Arcs() []arc.Arc
	AgentsOverlapping(ctx context.Context, arcs []arc.Arc) ([]types.AgentInfo, error)
	// OpsInWindow returns the operations located within arcs and authored
	// within window.
	OpsInWindow(ctx context.Context, arcs []arc.Arc, window TimeWindow) ([]TimedOp, error)
	// Oldest returns the authoring time of the oldest stored operation.
	Oldest(ctx context.Context) (types.Timestamp, bool, error)
}

// Requester sends a request to a peer and waits for its response.
type Requester interface {
	Request(ctx context.Context, peer p2p.Peer, req []byte) ([]byte, error)
}

// Transfer moves records between peers once a round found them missing.
type Transfer interface {
	FetchOps(ctx context.Context, peer p2p.Peer, hashes []types.OpHash) error
	PushOps(ctx context.Context, peer p2p.Peer, hashes []types.OpHash) error
	FetchAgents(ctx context.Context, peer p2p.Peer, keys []types.AgentKey) error
	PushAgents(ctx context.Context, peer p2p.Peer, keys []types.AgentKey) error
}

// PeerSet lists the peers available for gossip.
type PeerSet interface {
	GetPeers() []p2p.Peer
}
