// Package cmd holds the build info and command line flags shared by the
// node binaries.
package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/timotree3/holochain/config"
	"github.com/timotree3/holochain/config/presets"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string

	// Branch is the git branch used to build the App. Designed to be overwritten by make.
	Branch string

	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// AddFlags adds the node flags to flagSet, bound to cfg. It returns the
// location of the config file path flag.
func AddFlags(flagSet *pflag.FlagSet, cfg *config.Config) (configPath *string) {
	configPath = flagSet.StringP("config", "c", "", "load configuration from file")
	flagSet.StringVarP(&cfg.Preset, "preset", "p", cfg.Preset,
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))

	/** ======================== BaseConfig Flags ========================== **/
	flagSet.StringVarP(&cfg.DataDir, "data-folder", "d", cfg.DataDir,
		"directory for the database and identity, in-memory if empty")
	flagSet.BoolVar(&cfg.CollectMetrics, "metrics", cfg.CollectMetrics,
		"collect node metrics")
	flagSet.StringVar(&cfg.MetricsAddress, "metrics-address", cfg.MetricsAddress,
		"address of the metrics server")
	flagSet.StringVar(&cfg.MetricsPush, "metrics-push", cfg.MetricsPush,
		"push metrics to url")
	flagSet.DurationVar(&cfg.MetricsPushPeriod, "metrics-push-period", cfg.MetricsPushPeriod,
		"push period")
	flagSet.IntVar(&cfg.DatabaseConnections, "db-connections", cfg.DatabaseConnections,
		"number of pooled database connections")
	flagSet.Float64Var(&cfg.ArcCoverage, "arc-coverage", cfg.ArcCoverage,
		"share of the location space stored by the local agent")
	flagSet.DurationVar(&cfg.AgentTTL, "agent-ttl", cfg.AgentTTL,
		"validity of published agent infos")
	flagSet.DurationVar(&cfg.AgentRefresh, "agent-refresh", cfg.AgentRefresh,
		"interval for republishing the local agent info")

	/** ======================== P2P Flags ========================== **/
	flagSet.StringVar(&cfg.P2P.Listen, "listen", cfg.P2P.Listen,
		"address for listening")
	flagSet.StringSliceVar(&cfg.P2P.Bootnodes, "bootnodes", cfg.P2P.Bootnodes,
		"entrypoints into the network")
	flagSet.IntVar(&cfg.P2P.LowPeers, "low-peers", cfg.P2P.LowPeers,
		"low watermark for the number of connections")
	flagSet.IntVar(&cfg.P2P.HighPeers, "high-peers", cfg.P2P.HighPeers,
		"high watermark for the number of connections; once reached, connections are pruned until low watermark remains")
	flagSet.StringVar(&cfg.P2P.LogLevel, "p2p-log-level", cfg.P2P.LogLevel,
		"log level of the libp2p internals")

	/** ======================== Gossip Flags ========================== **/
	flagSet.DurationVar(&cfg.Gossip.Interval, "gossip-interval", cfg.Gossip.Interval,
		"interval between gossip rounds")
	flagSet.DurationVar(&cfg.Gossip.RoundTimeout, "gossip-round-timeout", cfg.Gossip.RoundTimeout,
		"timeout of every request within a round")
	flagSet.IntVar(&cfg.Gossip.PeersPerTick, "gossip-peers", cfg.Gossip.PeersPerTick,
		"number of peers gossiped with on every tick")
	flagSet.Float64Var(&cfg.Gossip.AgentFPRate, "gossip-agent-fp-rate", cfg.Gossip.AgentFPRate,
		"false positive rate of agent filters")
	flagSet.Float64Var(&cfg.Gossip.OpFPRate, "gossip-op-fp-rate", cfg.Gossip.OpFPRate,
		"false positive rate of operation filters")

	/** ======================== Fetch Flags ========================== **/
	flagSet.IntVar(&cfg.Fetch.BatchSize, "fetch-batch-size", cfg.Fetch.BatchSize,
		"number of records requested at once")
	flagSet.DurationVar(&cfg.Fetch.RequestTimeout, "fetch-timeout", cfg.Fetch.RequestTimeout,
		"timeout of fetch requests")

	/** ======================== Logging Flags ========================== **/
	flagSet.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level,
		"log level")
	flagSet.StringVar(&cfg.Logging.Encoder, "log-encoder", cfg.Logging.Encoder,
		"log as json or console")
	flagSet.StringToStringVar(&cfg.Logging.Modules, "log-modules", cfg.Logging.Modules,
		"per module log levels, e.g. gossip=debug")
	return configPath
}
