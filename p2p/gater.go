package p2p

import (
	"github.com/libp2p/go-libp2p/core/control"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// gater refuses new connections once the host is connected to max peers.
// Connection manager trimming happens only after the fact.
type gater struct {
	h   host.Host
	max int
}

func (g *gater) full() bool {
	return g.h != nil && len(g.h.Network().Peers()) >= g.max
}

func (*gater) InterceptPeerDial(peer.ID) bool {
	return true
}

func (g *gater) InterceptAddrDial(peer.ID, multiaddr.Multiaddr) bool {
	return !g.full()
}

func (g *gater) InterceptAccept(network.ConnMultiaddrs) bool {
	return !g.full()
}

func (*gater) InterceptSecured(network.Direction, peer.ID, network.ConnMultiaddrs) bool {
	return true
}

func (*gater) InterceptUpgraded(network.Conn) (allow bool, reason control.DisconnectReason) {
	return true, 0
}
