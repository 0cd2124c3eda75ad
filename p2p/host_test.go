package p2p

import (
	"context"
	"testing"
	"time"

	lp2plog "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/timotree3/holochain/log/logtest"
)

func TestEnsureIdentity(t *testing.T) {
	dir := t.TempDir()
	key1, err := EnsureIdentity(dir)
	require.NoError(t, err)
	key2, err := EnsureIdentity(dir)
	require.NoError(t, err)
	require.True(t, key1.Equals(key2))

	eph, err := EnsureIdentity("")
	require.NoError(t, err)
	require.False(t, key1.Equals(eph))
}

func TestBootstrap(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.DataDir = t.TempDir()
	cfg1.Listen = "/ip4/127.0.0.1/tcp/0"
	h1, err := New(logtest.New(t), cfg1)
	require.NoError(t, err)
	t.Cleanup(func() { h1.Stop() })

	cfg2 := DefaultConfig()
	cfg2.DataDir = t.TempDir()
	cfg2.Listen = "/ip4/127.0.0.1/tcp/0"
	addrs, err := peer.AddrInfoToP2pAddrs(&peer.AddrInfo{ID: h1.ID(), Addrs: h1.Addrs()})
	require.NoError(t, err)
	for _, addr := range addrs {
		cfg2.Bootnodes = append(cfg2.Bootnodes, addr.String())
	}
	h2, err := New(logtest.New(t), cfg2)
	require.NoError(t, err)
	t.Cleanup(func() { h2.Stop() })

	require.NoError(t, h2.Bootstrap(context.Background()))
	require.Equal(t, []Peer{h1.ID()}, h2.GetPeers())
	require.Eventually(t, func() bool {
		peers := h1.GetPeers()
		return len(peers) == 1 && peers[0] == h2.ID()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestBootstrapUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Listen = "/ip4/127.0.0.1/tcp/0"
	cfg.BootstrapTimeout = time.Second
	other, err := EnsureIdentity("")
	require.NoError(t, err)
	id, err := peer.IDFromPrivateKey(other)
	require.NoError(t, err)
	cfg.Bootnodes = []string{"/ip4/127.0.0.1/tcp/1/p2p/" + id.String()}
	h, err := New(logtest.New(t), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { h.Stop() })

	require.Error(t, h.Bootstrap(context.Background()))
	require.Empty(t, h.GetPeers())
}

func TestGaterLimitsPeers(t *testing.T) {
	newHost := func(high int) *Host {
		cfg := DefaultConfig()
		cfg.Listen = "/ip4/127.0.0.1/tcp/0"
		cfg.LowPeers = high
		cfg.HighPeers = high
		h, err := New(logtest.New(t), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { h.Stop() })
		return h
	}
	full := newHost(1)
	first, second := newHost(10), newHost(10)
	info := peer.AddrInfo{ID: full.ID(), Addrs: full.Addrs()}

	require.NoError(t, first.Connect(context.Background(), info))
	require.Eventually(t, func() bool {
		return len(full.GetPeers()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	require.Error(t, second.Connect(context.Background(), info))
}

func TestLibp2pLogsBridged(t *testing.T) {
	lg := lp2plog.Logger("kitsune-test")
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultConfig()
	cfg.Listen = "/ip4/127.0.0.1/tcp/0"
	h, err := New(zap.New(core), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		h.Stop()
		lp2plog.SetPrimaryCore(zapcore.NewNopCore())
	})

	lg.Info("below the configured level")
	lg.Warn("libp2p warning")
	require.Equal(t, 1, logs.FilterMessage("libp2p warning").Len())
	require.Zero(t, logs.FilterMessage("below the configured level").Len())
}

func TestInvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	_, err := New(logtest.New(t), cfg)
	require.ErrorContains(t, err, "libp2p log level")
}
