package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounters(t *testing.T) {
	r := New()

	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()
	r.CacheStore(true)
	r.CacheStore(false)
	r.UpstreamRequest("200")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheStores.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheStores.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamCalls.WithLabelValues("200")))
}

func TestNilRegistry(t *testing.T) {
	var r *Registry

	assert.NotPanics(t, func() {
		r.CacheHit()
		r.CacheMiss()
		r.CacheStore(true)
		r.UpstreamRequest("error")
		r.ObserveRequest("GET", "/health", "200", time.Millisecond)
	})
	assert.NotNil(t, r.Handler())
}

func TestHandlerExposition(t *testing.T) {
	r := New()
	r.ObserveRequest("GET", "/api/v1/card/:identifier", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `mtgapi_http_requests_total{method="GET",route="/api/v1/card/:identifier",status="200"} 1`)
	assert.Contains(t, string(body), "mtgapi_http_request_duration_seconds_bucket")
}
