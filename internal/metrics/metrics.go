package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodlog_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	snapshotDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodlog_snapshot_deliveries_total",
		Help: "Entry snapshots delivered to live subscribers",
	})

	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moodlog_active_subscriptions",
		Help: "Live entry subscriptions currently open",
	})

	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlog_store_failures_total",
		Help: "Store operations that failed at the adapter boundary",
	}, []string{"operation"})

	statsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlog_stats_cache_lookups_total",
		Help: "Stats cache lookups by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, statusBucket(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func statusBucket(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}

func SnapshotDelivered() { snapshotDeliveries.Inc() }

func SubscriptionOpened() { activeSubscriptions.Inc() }

func SubscriptionClosed() { activeSubscriptions.Dec() }

// StoreFailure counts a store error swallowed at the journal boundary.
func StoreFailure(operation string) {
	storeFailures.WithLabelValues(operation).Inc()
}

func StatsCacheHit()  { statsCacheLookups.WithLabelValues("hit").Inc() }
func StatsCacheMiss() { statsCacheLookups.WithLabelValues("miss").Inc() }
