package fetch

import (
	"context"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/p2p"
)

// Store holds the records served to and received from peers.
type Store interface {
	Arcs() []arc.Arc
	AddOp(*types.Op) (bool, error)
	HasOp(types.OpHash) (bool, error)
	GetOp(types.OpHash) (*types.Op, error)
	AddAgent(*types.AgentInfo) (bool, error)
	GetAgent(types.AgentKey) (*types.AgentInfo, error)
}

type requester interface {
	Run(context.Context) error
	Request(context.Context, p2p.Peer, []byte) ([]byte, error)
}
