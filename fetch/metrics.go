package fetch

import (
	"github.com/timotree3/holochain/metrics"
)

const subsystem = "fetch"

var (
	records = metrics.NewCounter(
		"records",
		subsystem,
		"Number of records moved between peers by kind and direction",
		[]string{"kind", "direction"},
	)
	receivedOps    = records.WithLabelValues("op", "received")
	receivedAgents = records.WithLabelValues("agent", "received")
	pushedOps      = records.WithLabelValues("op", "pushed")
	pushedAgents   = records.WithLabelValues("agent", "pushed")
	servedOps      = records.WithLabelValues("op", "served")
	servedAgents   = records.WithLabelValues("agent", "served")
	droppedOps     = records.WithLabelValues("op", "dropped")

	servedMissing = metrics.NewCounter(
		"served_missing",
		subsystem,
		"Number of requested records not found locally",
		[]string{},
	).WithLabelValues()

	pendingHits = metrics.NewCounter(
		"pending_hits",
		subsystem,
		"Number of operations skipped because another fetch requested them",
		[]string{},
	).WithLabelValues()

	peerErrors = metrics.NewCounter(
		"peer_errors",
		subsystem,
		"Number of failed requests to peers",
		[]string{},
	).WithLabelValues()
)
