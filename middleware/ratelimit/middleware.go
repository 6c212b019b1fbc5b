package ratelimit

import (
	"context"
	"net/http"
	"time"

	"aircraft-gateway/middleware/ratelimit/application"
	"aircraft-gateway/middleware/ratelimit/domain"

	"github.com/goccy/go-json"
)

const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Options configura o middleware só de rate limit (sem cache).
type Options struct {
	Store    domain.WindowStore
	Stats    domain.StatsStore
	Clock    domain.Clock
	KeyFn    KeyFunc
	Identity IdentityOptions
	// RouteFn nomeia a rota nas estatísticas. Nil usa DefaultRoute.
	RouteFn RouteFunc
	// OnStatsError recebe erros best-effort dos sinks de estatística.
	OnStatsError func(error)
	// AddRateLimitHeaders também expõe X-RateLimit-* em respostas admitidas.
	AddRateLimitHeaders bool
}

// RejectionBody é o corpo JSON do 429.
type RejectionBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// SetHeaders escreve X-RateLimit-Limit/Remaining/Reset a partir da decisão.
func SetHeaders(h http.Header, dec domain.Decision) {
	h.Set(HeaderLimit, formatInt(dec.Limit))
	h.Set(HeaderRemaining, formatInt(dec.Remaining))
	h.Set(HeaderReset, formatInt64(dec.ResetAt))
}

// Reject responde 429 com o motivo, o retry e os headers de limite.
func Reject(w http.ResponseWriter, dec domain.Decision) {
	retry := max(1, int(dec.RetryAfter/time.Second))

	SetHeaders(w.Header(), dec)
	w.Header().Set(HeaderRemaining, "0")
	w.Header().Set(HeaderRetryAfter, formatInt(retry))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(RejectionBody{Error: "Rate limit exceeded", RetryAfter: retry})
}

// RecordStats manda o evento para o sink sem derrubar a requisição.
func RecordStats(ctx context.Context, stats domain.StatsStore, ev domain.StatsEvent, onErr func(error)) {
	if stats == nil {
		return
	}
	if err := stats.Record(ctx, ev); err != nil && onErr != nil {
		onErr(err)
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.Identity)
	}
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock
	}
	if opts.RouteFn == nil {
		opts.RouteFn = DefaultRoute
	}

	svc := application.Service{
		Store: opts.Store,
		Clock: opts.Clock,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := domain.Key(opts.KeyFn(r))
			start := opts.Clock.Now()

			dec := svc.Decide(key)
			ev := domain.StatsEvent{
				Key:     key,
				Allowed: dec.Allowed,
				Method:  r.Method,
				Route:   opts.RouteFn(r),
				At:      start,
			}
			if !dec.Allowed {
				RecordStats(r.Context(), opts.Stats, ev, opts.OnStatsError)
				Reject(w, dec)
				return
			}
			if opts.AddRateLimitHeaders && opts.Store != nil {
				SetHeaders(w.Header(), dec)
			}

			next.ServeHTTP(w, r)

			ev.Latency = opts.Clock.Now().Sub(start)
			RecordStats(r.Context(), opts.Stats, ev, opts.OnStatsError)
		})
	}
}
