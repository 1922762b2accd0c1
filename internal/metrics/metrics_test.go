package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusBucket(t *testing.T) {
	assert.Equal(t, "2xx", statusBucket(200))
	assert.Equal(t, "4xx", statusBucket(404))
	assert.Equal(t, "5xx", statusBucket(503))
	assert.Equal(t, "42", statusBucket(42))
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/stats", "2xx"))

	ObserveHTTPRequest("GET", "/api/stats", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/stats", "2xx"))
	assert.Equal(t, before+1, after)
}

func TestSubscriptionGauge(t *testing.T) {
	before := testutil.ToFloat64(activeSubscriptions)

	SubscriptionOpened()
	SubscriptionOpened()
	SubscriptionClosed()

	assert.Equal(t, before+1, testutil.ToFloat64(activeSubscriptions))
	SubscriptionClosed()
}

func TestStoreFailure(t *testing.T) {
	before := testutil.ToFloat64(storeFailures.WithLabelValues("list"))
	StoreFailure("list")
	assert.Equal(t, before+1, testutil.ToFloat64(storeFailures.WithLabelValues("list")))
}
