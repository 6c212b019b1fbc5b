// Package metrics expõe as estatísticas do gateway no formato Prometheus.
//
// Recorder implementa domain.StatsStore e entra no Gate como mais um sink;
// Handler serve o registry em /metrics.
package metrics

import (
	"context"
	"net/http"

	"aircraft-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gateway"

type Recorder struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	factory  promauto.Factory
}

// NewRecorder registra os coletores em reg. Nil usa o registry padrão.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Requests seen by the gate, by outcome and cache result",
			},
			[]string{"outcome", "cache"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Latency of admitted requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"cache"},
		),
		factory: f,
	}
}

func (r *Recorder) Record(_ context.Context, ev domain.StatsEvent) error {
	if r == nil {
		return nil
	}
	cache := cacheLabel(ev.Cache)
	if !ev.Allowed {
		r.requests.WithLabelValues("blocked", cache).Inc()
		return nil
	}
	r.requests.WithLabelValues("allowed", cache).Inc()
	r.latency.WithLabelValues(cache).Observe(ev.Latency.Seconds())
	return nil
}

// TrackGauge publica um valor lido na hora da coleta (tamanho do cache, clientes ativos).
func (r *Recorder) TrackGauge(name, help string, fn func() float64) {
	r.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn)
}

// Handler serve as métricas de g. Nil usa o registry padrão.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func cacheLabel(c domain.CacheOutcome) string {
	if c == domain.CacheBypass {
		return "bypass"
	}
	return string(c)
}
