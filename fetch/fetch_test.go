package fetch

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/datastore"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/log/logtest"
	"github.com/timotree3/holochain/p2p"
	"github.com/timotree3/holochain/sql"
)

type testNode struct {
	peer  p2p.Peer
	store *datastore.Store
	fetch *Fetch
}

func newTestNodes(t *testing.T, n int, cfg Config) []*testNode {
	mesh, err := mocknet.FullMeshConnected(n)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	var eg errgroup.Group
	t.Cleanup(func() {
		cancel()
		require.NoError(t, eg.Wait())
	})

	nodes := make([]*testNode, 0, n)
	for i, h := range mesh.Hosts() {
		db := sql.InMemory()
		t.Cleanup(func() { require.NoError(t, db.Close()) })
		logger := logtest.New(t).Named(fmt.Sprintf("node-%d", i))
		store := datastore.New(db, datastore.WithLogger(logger))
		f := NewFetch(store, h, WithConfig(cfg), WithLogger(logger))
		eg.Go(func() error {
			return f.Run(ctx)
		})
		nodes = append(nodes, &testNode{peer: h.ID(), store: store, fetch: f})
	}
	require.Eventually(t, func() bool {
		for _, h := range mesh.Hosts() {
			protocols := h.Mux().Protocols()
			if !slices.Contains(protocols, fetchProtocol) || !slices.Contains(protocols, pushProtocol) {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
	return nodes
}

func testFetchConfig() Config {
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func addOps(t *testing.T, store *datastore.Store, n int) []types.OpHash {
	hashes := make([]types.OpHash, 0, n)
	for i := range n {
		op := types.NewOp(types.Timestamp(1000+i), []byte(fmt.Sprintf("op-%d", i)))
		added, err := store.AddOp(op)
		require.NoError(t, err)
		require.True(t, added)
		hashes = append(hashes, op.Hash)
	}
	return hashes
}

func addAgents(t *testing.T, store *datastore.Store, n int) []types.AgentKey {
	keys := make([]types.AgentKey, 0, n)
	for i := range n {
		info := &types.AgentInfo{
			Agent:       types.RandomAgentID(),
			SignedAtMs:  types.Timestamp(100 + i),
			ExpiresAtMs: types.Timestamp(1_000_000),
			Arc:         arc.Full(),
		}
		_, err := store.AddAgent(info)
		require.NoError(t, err)
		keys = append(keys, info.Key())
	}
	return keys
}

func TestFetchOps(t *testing.T) {
	nodes := newTestNodes(t, 2, testFetchConfig())
	local, remote := nodes[0], nodes[1]
	hashes := addOps(t, remote.store, 7)
	unknown := types.RandomOpHash()

	require.NoError(t, local.fetch.FetchOps(context.Background(), remote.peer, append(hashes, unknown)))
	for _, h := range hashes {
		got, err := local.store.GetOp(h)
		require.NoError(t, err)
		require.True(t, got.Verify())
	}
	has, err := local.store.HasOp(unknown)
	require.NoError(t, err)
	require.False(t, has)
	require.Zero(t, local.fetch.pending.Len())

	// stored ops are not requested again
	require.NoError(t, local.fetch.FetchOps(context.Background(), "unreachable", hashes))
}

func TestFetchOpsPending(t *testing.T) {
	nodes := newTestNodes(t, 1, testFetchConfig())
	h := types.RandomOpHash()
	nodes[0].fetch.pending.Add(h, struct{}{})

	// no request is made, so the unreachable peer doesn't fail the fetch
	require.NoError(t, nodes[0].fetch.FetchOps(context.Background(), "unreachable", []types.OpHash{h}))
	require.True(t, nodes[0].fetch.pending.Contains(h))
}

func TestFetchAgents(t *testing.T) {
	nodes := newTestNodes(t, 2, testFetchConfig())
	local, remote := nodes[0], nodes[1]
	keys := addAgents(t, remote.store, 5)

	require.NoError(t, local.fetch.FetchAgents(context.Background(), remote.peer, keys))
	for _, k := range keys {
		got, err := local.store.GetAgent(k)
		require.NoError(t, err)
		require.Equal(t, k, got.Key())
	}
}

func TestFetchUnreachable(t *testing.T) {
	nodes := newTestNodes(t, 1, testFetchConfig())
	err := nodes[0].fetch.FetchOps(context.Background(), "unreachable", []types.OpHash{types.RandomOpHash()})
	require.Error(t, err)
	require.Zero(t, nodes[0].fetch.pending.Len())
}

func TestPushOps(t *testing.T) {
	nodes := newTestNodes(t, 2, testFetchConfig())
	local, remote := nodes[0], nodes[1]
	hashes := addOps(t, local.store, 7)
	loc := hashes[0].Loc()
	remote.store.SetArcs([]arc.Arc{{Start: loc, End: loc + 1}})

	require.NoError(t, local.fetch.PushOps(context.Background(), remote.peer, append(hashes, types.RandomOpHash())))
	for i, h := range hashes {
		has, err := remote.store.HasOp(h)
		require.NoError(t, err)
		require.Equal(t, i == 0 || h.Loc() == loc, has, "op %d", i)
	}
}

func TestPushAgents(t *testing.T) {
	nodes := newTestNodes(t, 2, testFetchConfig())
	local, remote := nodes[0], nodes[1]
	keys := addAgents(t, local.store, 4)
	missing := types.AgentKey{Agent: types.RandomAgentID(), SignedAtMs: 1}

	require.NoError(t, local.fetch.PushAgents(context.Background(), remote.peer, append(keys, missing)))
	for _, k := range keys {
		_, err := remote.store.GetAgent(k)
		require.NoError(t, err)
	}
	_, err := remote.store.GetAgent(missing)
	require.ErrorIs(t, err, sql.ErrNotFound)
}

func TestHandleFetchMalformed(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	h := newHandler(datastore.New(db), logtest.New(t))

	_, err := h.handleFetch(context.Background(), []byte{0xff, 0xff})
	require.ErrorIs(t, err, errBadRequest)
	_, err = h.handlePush(context.Background(), []byte{0xff, 0xff})
	require.ErrorIs(t, err, errBadRequest)
}

func TestHandlePushForged(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	store := datastore.New(db)
	store.SetArcs([]arc.Arc{arc.Full()})
	h := newHandler(store, logtest.New(t))

	op := types.NewOp(10, []byte("data"))
	op.Data = []byte("forged")
	_, err := h.handlePush(context.Background(), codec.MustEncode(&PushBatch{Ops: []types.Op{*op}}))
	require.ErrorIs(t, err, errBadRequest)
	has, err := store.HasOp(op.Hash)
	require.NoError(t, err)
	require.False(t, has)
}

func TestHandleFetchEchoesID(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	store := datastore.New(db)
	h := newHandler(store, logtest.New(t))
	op := types.NewOp(10, []byte("data"))
	_, err := store.AddOp(op)
	require.NoError(t, err)

	req := &RequestBatch{Ops: []types.OpHash{op.Hash, types.RandomOpHash()}}
	req.setID()
	data, err := h.handleFetch(context.Background(), codec.MustEncode(req))
	require.NoError(t, err)
	var resp ResponseBatch
	require.NoError(t, codec.Decode(data, &resp))
	require.Equal(t, req.ID, resp.ID)
	require.Equal(t, []types.Op{*op}, resp.Ops)
	require.Empty(t, resp.Agents)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	cfg.BatchSize = MaxBatchSize + 1
	require.Error(t, cfg.Validate())
	cfg = DefaultConfig()
	cfg.PendingSize = 0
	require.Error(t, cfg.Validate())
}
