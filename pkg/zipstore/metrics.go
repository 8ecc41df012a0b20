package zipstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "zipstore"

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "archive_scans_total",
		Help:      "Number of archive entry scans, by result (ok, absent, error).",
	}, []string{"result"})

	streamsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "streams_opened_total",
		Help:      "Number of entry streams opened.",
	})

	streamsLeakedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "streams_leaked_total",
		Help:      "Number of entry streams released by the garbage collector instead of Close.",
	})

	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "builds_total",
		Help:      "Number of archive builds, by result (published, failed, cancelled).",
	}, []string{"result"})
)
