package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion Metrics
var (
	HeadBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_head_block",
		Help: "The chain head observed at the start of the ingestion pass",
	})

	CursorBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_cursor_block",
		Help: "The last block fully processed by the ingestion pass",
	})

	WindowStep = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_window_step",
		Help: "The current block range step of the scheduler",
	})

	WindowsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_windows_total",
		Help: "The total number of block windows processed",
	})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_events_total",
		Help: "The total number of decoded events classified, by event kind",
	}, []string{"kind"})

	WindowFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_window_fetch_duration_seconds",
		Help:    "Time taken to fetch the logs of one block window, including retries",
		Buckets: prometheus.DefBuckets,
	})
)

// RPC Metrics
var (
	RPCRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_retries_total",
		Help: "The total number of retried remote calls, by operation",
	}, []string{"operation"})
)

// Timestamp Resolver Metrics
var TimestampsResolved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "timestamps_resolved_total",
	Help: "The total number of block timestamps resolved",
})

// Checkpoint Metrics
var (
	CheckpointWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkpoint_writes_total",
		Help: "The total number of checkpoint writes, by category and status",
	}, []string{"category", "status"})

	PublishedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publisher_records_total",
		Help: "The total number of records published, by category",
	}, []string{"category"})
)
