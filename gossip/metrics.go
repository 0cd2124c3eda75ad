package gossip

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/timotree3/holochain/metrics"
)

const (
	subsystem = "gossip"

	kindAgent = "agent"
	kindOp    = "op"

	directionFetch = "fetch"
	directionPush  = "push"

	resultSynced    = "synced"
	resultNoOverlap = "no_overlap"
	resultDecode    = "decode"
	resultTimeout   = "timeout"
	resultStore     = "store"
	resultFailed    = "failed"
)

var (
	roundsCount = metrics.NewCounter(
		"rounds",
		subsystem,
		"Number of gossip rounds by result",
		[]string{"result"},
	)
	roundDuration = metrics.NewHistogramWithBuckets(
		"round_duration_seconds",
		subsystem,
		"Duration of gossip rounds by result",
		[]string{"result"},
		prometheus.ExponentialBuckets(0.01, 2, 12),
	)
	missingKeys = metrics.NewCounter(
		"missing_keys",
		subsystem,
		"Number of keys found missing by direction and kind",
		[]string{"direction", "kind"},
	)
	filterBytes = metrics.NewHistogramWithBuckets(
		"filter_bytes",
		subsystem,
		"Size of encoded filters",
		[]string{"kind"},
		prometheus.ExponentialBuckets(64, 4, 10),
	)
	requestsHandled = metrics.NewCounter(
		"requests_handled",
		subsystem,
		"Number of gossip requests handled by type",
		[]string{"type"},
	)

	fetchedAgents = missingKeys.WithLabelValues(directionFetch, kindAgent)
	pushedAgents  = missingKeys.WithLabelValues(directionPush, kindAgent)
	fetchedOps    = missingKeys.WithLabelValues(directionFetch, kindOp)
	pushedOps     = missingKeys.WithLabelValues(directionPush, kindOp)
)
