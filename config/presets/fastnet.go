package presets

import (
	"time"

	"github.com/timotree3/holochain/config"
)

func init() {
	register("fastnet", fastnet())
}

// fastnet is meant for local clusters where records should converge within
// seconds.
func fastnet() config.Config {
	conf := config.DefaultConfig()
	conf.Preset = "fastnet"
	conf.P2P.Listen = "/ip4/127.0.0.1/tcp/0"
	conf.P2P.LowPeers = 10
	conf.P2P.HighPeers = 20

	conf.AgentTTL = 10 * time.Minute
	conf.AgentRefresh = time.Minute

	conf.Gossip.Interval = 2 * time.Second
	conf.Gossip.RoundTimeout = 5 * time.Second
	conf.Gossip.MaxWindow = 10 * time.Minute
	conf.Gossip.PeersPerTick = 8
	conf.Gossip.MaxConcurrentRounds = 8

	conf.Fetch.RequestTimeout = 5 * time.Second
	conf.Fetch.RequestsPerInterval = 1000
	conf.Logging.Level = "debug"
	return conf
}
