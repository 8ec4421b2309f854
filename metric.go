package simdex

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type indexMetrics struct {
	entries         prometheus.Gauge
	bigBucketTotal  prometheus.Counter
	queryCandidates prometheus.Histogram
	queryMatches    prometheus.Histogram
	bulkLoadedTotal prometheus.Counter
}

func initIndexMetrics(reg prometheus.Registerer) *indexMetrics {
	return &indexMetrics{
		entries: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simdex_index_entries",
			Help: "Number of distinct (id, fingerprint) pairs in the index",
		})),
		bigBucketTotal: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_big_bucket_total",
			Help: "Number of query probes that hit a bucket above the big bucket size",
		})),
		queryCandidates: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simdex_query_candidates",
			Help:    "Bucket entries examined per near-dup query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		})),
		queryMatches: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simdex_query_matches",
			Help:    "Near-dups returned per query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		})),
		bulkLoadedTotal: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_bulk_loaded_total",
			Help: "Entries added through the bulk constructor",
		})),
	}
}

type dbMetrics struct {
	addTotal    prometheus.Counter
	deleteTotal prometheus.Counter
	queryTotal  prometheus.Counter

	addLatency    prometheus.Histogram
	deleteLatency prometheus.Histogram
	queryLatency  prometheus.Histogram

	batchSize       prometheus.Histogram
	replayedRecords prometheus.Counter
	operationErrors prometheus.Counter
}

func initDBMetrics(reg prometheus.Registerer) *dbMetrics {
	return &dbMetrics{
		addTotal: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_add_total",
			Help: "Total number of Add operations",
		})),
		deleteTotal: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_delete_total",
			Help: "Total number of Delete operations",
		})),
		queryTotal: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_query_total",
			Help: "Total number of NearDups queries",
		})),

		addLatency: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simdex_add_duration_seconds",
			Help:    "Duration of Add operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10), // 0.1ms to ~100ms
		})),
		deleteLatency: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simdex_delete_duration_seconds",
			Help:    "Duration of Delete operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
		})),
		queryLatency: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simdex_query_duration_seconds",
			Help:    "Duration of NearDups queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
		})),

		batchSize: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simdex_batch_size",
			Help:    "Operations per committed batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		})),
		replayedRecords: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_journal_replayed_total",
			Help: "Journal records replayed on open",
		})),
		operationErrors: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simdex_operation_errors_total",
			Help: "Total number of failed operations",
		})),
	}
}

// register adds c to reg. A collector already registered under the same
// description is reused, so reopening a DB against one registry is safe.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
