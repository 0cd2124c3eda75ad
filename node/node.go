// Package node wires the store, p2p host, record transfer and gossip into a
// running node.
package node

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/config"
	"github.com/timotree3/holochain/datastore"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/fetch"
	"github.com/timotree3/holochain/gossip"
	"github.com/timotree3/holochain/log"
	"github.com/timotree3/holochain/metrics"
	"github.com/timotree3/holochain/p2p"
	"github.com/timotree3/holochain/p2p/server"
	"github.com/timotree3/holochain/sql"
)

const (
	dbFile   = "state.sql"
	lockFile = "node.lock"
)

// gossipRequestLimit fits the largest operation filter and its envelope.
const gossipRequestLimit = 17 << 20

// Logger names.
const (
	P2PLogger     = "p2p"
	StoreLogger   = "store"
	DBLogger      = "db"
	FetchLogger   = "fetch"
	GossipLogger  = "gossip"
	MetricsLogger = "metrics"
)

// Option to modify an App instance.
type Option func(app *App)

// WithLog sets the root logger of the App.
func WithLog(logger *zap.Logger) Option {
	return func(app *App) {
		app.log = logger
	}
}

// WithConfig overwrites the default configuration.
func WithConfig(conf *config.Config) Option {
	return func(app *App) {
		app.Config = conf
	}
}

// WithHost runs the App on an existing host instead of creating one from the
// p2p configuration.
func WithHost(host *p2p.Host) Option {
	return func(app *App) {
		app.host = host
	}
}

// WithClock sets the clock used for timestamps and tickers.
func WithClock(clock clockwork.Clock) Option {
	return func(app *App) {
		app.clock = clock
	}
}

// App is the node: it owns the database, the host and all services running
// on top of them.
type App struct {
	Config *config.Config

	log   *zap.Logger
	clock clockwork.Clock

	db      *sql.Database
	host    *p2p.Host
	store   *datastore.Store
	fetch   *fetch.Fetch
	gossip  *gossip.Gossip
	servers []*server.Server

	agent    types.AgentID
	started  chan struct{}
	fileLock *flock.Flock
}

// New creates an App with the default configuration.
func New(opts ...Option) *App {
	defaultConfig := config.DefaultConfig()
	app := &App{
		Config:  &defaultConfig,
		log:     zap.NewNop(),
		clock:   clockwork.NewRealClock(),
		started: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

func (app *App) named(module string) *zap.Logger {
	return log.Named(app.log, app.Config.Logging, module)
}

// Initialize validates the configuration and prepares the data folder.
func (app *App) Initialize() error {
	if err := app.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if app.Config.DataDir == "" {
		return nil
	}
	if err := os.MkdirAll(app.Config.DataDir, 0o700); err != nil {
		return fmt.Errorf("ensure data folder exists: %w", err)
	}
	return app.lock()
}

// lock takes an exclusive lock on the data folder. It fails if another
// node already uses the folder.
func (app *App) lock() error {
	fl := flock.New(filepath.Join(app.Config.DataDir, lockFile))
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("flock %s: %w", fl.Path(), err)
	} else if !locked {
		return fmt.Errorf("only one node instance should be running (locking file %s)", fl.Path())
	}
	app.fileLock = fl
	return nil
}

// unlock releases the data folder. It is a no-op if the folder is not locked.
func (app *App) unlock() error {
	if app.fileLock == nil {
		return nil
	}
	if err := app.fileLock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", app.fileLock.Path(), err)
	}
	app.fileLock = nil
	return nil
}

// Start runs the node until ctx is canceled or a service fails.
func (app *App) Start(ctx context.Context) error {
	if err := app.setupDB(); err != nil {
		return err
	}
	if err := app.setupHost(); err != nil {
		return err
	}
	app.setupServices()
	if err := app.publishAgent(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	for _, srv := range app.servers {
		eg.Go(func() error {
			return srv.Run(ctx)
		})
	}
	eg.Go(func() error {
		return app.fetch.Run(ctx)
	})
	if err := app.host.Bootstrap(ctx); err != nil {
		app.log.Warn("bootstrap failed, waiting for incoming connections", zap.Error(err))
	}
	eg.Go(func() error {
		return app.gossip.Run(ctx)
	})
	eg.Go(func() error {
		return app.refreshAgents(ctx)
	})
	if err := app.startMetrics(ctx); err != nil {
		cancel()
		eg.Wait()
		return err
	}
	close(app.started)
	app.log.Info("node started",
		zap.Stringer("peer", app.host.ID()),
		app.agent.Field(),
		zap.Any("arcs", app.store.Arcs()),
	)

	<-ctx.Done()
	return eg.Wait()
}

func (app *App) setupDB() error {
	opts := []sql.Opt{
		sql.WithLogger(app.named(DBLogger)),
		sql.WithLatencyMetering(app.Config.DatabaseLatency),
	}
	var (
		db  *sql.Database
		err error
	)
	if app.Config.DataDir == "" {
		db, err = sql.OpenInMemory(opts...)
	} else {
		opts = append(opts, sql.WithConnections(app.Config.DatabaseConnections))
		db, err = sql.Open("file:"+filepath.Join(app.Config.DataDir, dbFile), opts...)
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.db = db
	app.store = datastore.New(db,
		datastore.WithCacheSize(app.Config.OpCacheSize),
		datastore.WithLogger(app.named(StoreLogger)),
	)
	return nil
}

func (app *App) setupHost() error {
	if app.host != nil {
		return nil
	}
	cfg := app.Config.P2P
	cfg.DataDir = app.Config.DataDir
	host, err := p2p.New(app.named(P2PLogger), cfg)
	if err != nil {
		return fmt.Errorf("create p2p host: %w", err)
	}
	app.host = host
	return nil
}

func (app *App) setupServices() {
	app.agent = types.AgentID(types.CalcHash32([]byte(app.host.ID())))
	app.fetch = fetch.NewFetch(app.store, app.host,
		fetch.WithConfig(app.Config.Fetch),
		fetch.WithLogger(app.named(FetchLogger)),
	)

	logger := app.named(GossipLogger)
	var g *gossip.Gossip
	handler := func(ctx context.Context, req []byte) ([]byte, error) {
		return g.Handle(ctx, req)
	}
	srv := server.New(app.host, gossip.Protocol, server.WrapHandler(handler),
		server.WithTimeout(app.Config.Gossip.RoundTimeout),
		server.WithLog(logger),
		server.WithRequestSizeLimit(gossipRequestLimit),
		server.WithQueueSize(app.Config.Fetch.QueueSize),
		server.WithMetrics(),
	)
	g = gossip.New(app.store, srv, app.fetch, app.host,
		gossip.WithConfig(app.Config.Gossip),
		gossip.WithClock(app.clock),
		gossip.WithLogger(logger),
	)
	app.gossip = g
	app.servers = append(app.servers, srv)
}

// localArc returns the arc stored by the local agent.
func (app *App) localArc() arc.Arc {
	half := app.Config.ArcCoverage * (1 << 31)
	if half >= 1<<31 {
		return arc.Full()
	}
	return arc.FromCenter(app.agent.Loc(), uint32(math.Ceil(half)))
}

// publishAgent stores a fresh info for the local agent. Peers learn about it
// in their next gossip round.
func (app *App) publishAgent() error {
	now := types.TimestampFromTime(app.clock.Now())
	info := &types.AgentInfo{
		Agent:       app.agent,
		SignedAtMs:  now,
		ExpiresAtMs: types.TimestampFromTime(app.clock.Now().Add(app.Config.AgentTTL)),
		Arc:         app.localArc(),
	}
	if _, err := app.store.AddAgent(info); err != nil {
		return fmt.Errorf("publish local agent: %w", err)
	}
	app.store.SetArcs([]arc.Arc{info.Arc})
	return nil
}

func (app *App) refreshAgents(ctx context.Context) error {
	ticker := app.clock.NewTicker(app.Config.AgentRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
		if err := app.publishAgent(); err != nil {
			app.log.Warn("failed to refresh local agent", zap.Error(err))
		}
		pruned, err := app.store.PruneAgents(types.TimestampFromTime(app.clock.Now()))
		if err != nil {
			app.log.Warn("failed to prune agents", zap.Error(err))
			continue
		}
		if pruned > 0 {
			app.log.Debug("pruned expired agents", zap.Int("count", pruned))
		}
	}
}

func (app *App) startMetrics(ctx context.Context) error {
	logger := app.named(MetricsLogger)
	if app.Config.CollectMetrics {
		if _, err := metrics.StartMetricsServer(ctx, logger, app.Config.MetricsAddress); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
	}
	if app.Config.MetricsPush != "" {
		metrics.StartPushingMetrics(ctx, logger, app.Config.MetricsPush,
			app.Config.MetricsPushPeriod, app.host.ID().String())
	}
	return nil
}

// Started is closed once all services run.
func (app *App) Started() <-chan struct{} {
	return app.started
}

// Host returns the p2p host of the node.
func (app *App) Host() *p2p.Host {
	return app.host
}

// Store returns the record store of the node.
func (app *App) Store() *datastore.Store {
	return app.store
}

// Gossip returns the gossip loop of the node.
func (app *App) Gossip() *gossip.Gossip {
	return app.gossip
}

// Agent returns the id of the local agent.
func (app *App) Agent() types.AgentID {
	return app.agent
}

// Cleanup stops the host and closes the database.
func (app *App) Cleanup() error {
	var errs []error
	if app.host != nil {
		errs = append(errs, app.host.Stop())
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	errs = append(errs, app.unlock())
	return errors.Join(errs...)
}
