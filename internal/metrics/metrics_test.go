package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, domain.StatsEvent{Allowed: true, Cache: domain.CacheHit, Latency: time.Millisecond}))
	require.NoError(t, r.Record(ctx, domain.StatsEvent{Allowed: true, Cache: domain.CacheHit}))
	require.NoError(t, r.Record(ctx, domain.StatsEvent{Allowed: true, Cache: domain.CacheMiss}))
	require.NoError(t, r.Record(ctx, domain.StatsEvent{Allowed: false}))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("allowed", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("allowed", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("blocked", "bypass")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NoError(t, r.Record(context.Background(), domain.StatsEvent{Allowed: true}))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.TrackGauge("cache_entries", "Entries in the response cache", func() float64 { return 7 })
	_ = r.Record(context.Background(), domain.StatsEvent{Allowed: true})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "gateway_requests_total")
	assert.Contains(t, body, "gateway_cache_entries 7")
}
