// Package p2p sets up the libp2p host used to reach other nodes.
package p2p

import (
	"context"
	"errors"
	"fmt"
	"time"

	lp2plog "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/host/peerstore/pstoremem"
	"github.com/libp2p/go-libp2p/p2p/muxer/yamux"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	"github.com/libp2p/go-libp2p/p2p/security/noise"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/multiformats/go-multiaddr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Peer is the identity of a remote node.
type Peer = peer.ID

// DefaultConfig config.
func DefaultConfig() Config {
	return Config{
		LogLevel:           "warn",
		Listen:             "/ip4/0.0.0.0/tcp/7513",
		LowPeers:           40,
		HighPeers:          100,
		GracePeersShutdown: 30 * time.Second,
		BootstrapTimeout:   10 * time.Second,
	}
}

// Config for all things related to p2p layer.
type Config struct {
	DataDir            string        `mapstructure:"-"`
	LogLevel           string        `mapstructure:"log-level"`
	GracePeersShutdown time.Duration `mapstructure:"grace-peers-shutdown"`
	BootstrapTimeout   time.Duration `mapstructure:"bootstrap-timeout"`

	DisableReusePort bool     `mapstructure:"disable-reuseport"`
	Listen           string   `mapstructure:"listen"`
	Bootnodes        []string `mapstructure:"bootnodes"`
	LowPeers         int      `mapstructure:"low-peers"`
	HighPeers        int      `mapstructure:"high-peers"`
}

// Host is a libp2p host with the bootnodes it keeps connections to.
type Host struct {
	host.Host

	logger    *zap.Logger
	cfg       Config
	bootnodes []peer.AddrInfo
}

// New initializes libp2p host with tcp transport, noise security and yamux muxer.
func New(logger *zap.Logger, cfg Config) (*Host, error) {
	logger.Info("starting libp2p host", zap.Any("config", &cfg))
	key, err := EnsureIdentity(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	lvl, err := lp2plog.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse libp2p log level %q: %w", cfg.LogLevel, err)
	}
	lp2plog.SetPrimaryCore(logger.Core())
	lp2plog.SetAllLoggers(lvl)
	listen, err := multiaddr.NewMultiaddr(cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("parse listen address %q: %w", cfg.Listen, err)
	}
	bootnodes := make([]peer.AddrInfo, 0, len(cfg.Bootnodes))
	for _, bootnode := range cfg.Bootnodes {
		info, err := peer.AddrInfoFromString(bootnode)
		if err != nil {
			return nil, fmt.Errorf("parse into peer.AddrInfo %s: %w", bootnode, err)
		}
		bootnodes = append(bootnodes, *info)
	}
	cm, err := connmgr.NewConnManager(cfg.LowPeers, cfg.HighPeers, connmgr.WithGracePeriod(cfg.GracePeersShutdown))
	if err != nil {
		return nil, fmt.Errorf("p2p create conn mgr: %w", err)
	}
	ps, err := pstoremem.NewPeerstore()
	if err != nil {
		return nil, fmt.Errorf("can't create peer store: %w", err)
	}
	var tcpOpts []any
	if cfg.DisableReusePort {
		tcpOpts = append(tcpOpts, tcp.DisableReuseport())
	}
	g := &gater{max: cfg.HighPeers}
	h, err := libp2p.New(
		libp2p.Identity(key),
		libp2p.ListenAddrs(listen),
		libp2p.UserAgent("kitsune"),
		libp2p.Transport(tcp.NewTCPTransport, tcpOpts...),
		libp2p.Security(noise.ID, noise.New),
		libp2p.Muxer(yamux.ID, yamux.DefaultTransport),
		libp2p.ConnectionManager(cm),
		libp2p.Peerstore(ps),
		libp2p.ConnectionGater(g),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize libp2p host: %w", err)
	}
	g.h = h
	logger.Info("local node identity",
		zap.Stringer("identity", h.ID()),
		zap.Any("addresses", h.Addrs()),
	)
	return &Host{Host: h, logger: logger, cfg: cfg, bootnodes: bootnodes}, nil
}

// Upgrade wraps an existing libp2p host, e.g. one from mocknet.
func Upgrade(h host.Host, logger *zap.Logger) *Host {
	return &Host{Host: h, logger: logger, cfg: DefaultConfig()}
}

// Bootstrap connects to the configured bootnodes. It fails only if none of
// them can be reached.
func (h *Host) Bootstrap(ctx context.Context) error {
	if len(h.bootnodes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, h.cfg.BootstrapTimeout)
	defer cancel()
	var (
		eg   errgroup.Group
		errs = make([]error, len(h.bootnodes))
	)
	for i, info := range h.bootnodes {
		eg.Go(func() error {
			if err := h.Connect(ctx, info); err != nil {
				h.logger.Warn("failed to connect to bootnode", zap.Stringer("peer", info.ID), zap.Error(err))
				errs[i] = err
			}
			return nil
		})
	}
	eg.Wait()
	for _, err := range errs {
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("no bootnode reachable: %w", errors.Join(errs...))
}

// GetPeers returns the currently connected peers.
func (h *Host) GetPeers() []Peer {
	var peers []Peer
	for _, p := range h.Network().Peers() {
		if h.Network().Connectedness(p) == network.Connected {
			peers = append(peers, p)
		}
	}
	return peers
}

// Stop closes the host.
func (h *Host) Stop() error {
	if err := h.Close(); err != nil {
		return fmt.Errorf("failed to close libp2p host: %w", err)
	}
	return nil
}
