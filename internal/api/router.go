// Package api monta as rotas HTTP do gateway sobre chi.
//
// Ordem das camadas nas rotas de dados: CORS, auth, gate (rate limit + cache),
// timeout opcional, handler. health e metrics ficam fora de auth e do gate;
// as rotas admin exigem auth mas não passam pelo gate.
package api

import (
	"net/http"
	"time"

	"aircraft-gateway/internal/aircraft"
	"aircraft-gateway/internal/logging"
	"aircraft-gateway/middleware/ratelimit/domain"
	"aircraft-gateway/middleware/shaping"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	Repo aircraft.Repository
	// Gate nil deixa as rotas de dados sem rate limit nem cache.
	Gate *shaping.Gate

	APIKey    string
	KeyHeader string
	Version   string

	// HandlerTimeout > 0 corta handlers lentos com 504.
	HandlerTimeout time.Duration
	// Metrics é servido em /metrics sem auth. Nil não registra a rota.
	Metrics http.Handler

	Clock domain.Clock
}

func NewRouter(opts Options) http.Handler {
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock
	}
	h := &handlers{repo: opts.Repo, gate: opts.Gate, version: opts.Version, clock: opts.Clock}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(logging.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", keyHeader(opts.KeyHeader)},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", shaping.HeaderCache, shaping.HeaderCacheTTL},
		MaxAge:         300,
	}))
	r.Use(preflight)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/api/health", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(opts.APIKey, opts.KeyHeader))

		r.Group(func(r chi.Router) {
			if opts.Gate != nil {
				r.Use(opts.Gate.Middleware())
			}
			if opts.HandlerTimeout > 0 {
				r.Use(chimiddleware.Timeout(opts.HandlerTimeout))
			}
			r.Get("/api/aircraft/{tail}/summary", h.summary)
			r.Get("/api/aircraft/{tail}/history", h.history)
			r.Get("/api/aircraft/{tail}/live", h.live)
			r.Get("/api/search", h.search)
			r.Get("/api/tracking/live", h.trackingLive)
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/stats", h.adminStats)
			r.Post("/cache/clear", h.adminClearCache)
			r.Post("/ratelimit/clear", h.adminClearRateLimits)
		})
	})

	return r
}

// preflight responde qualquer OPTIONS com 200 e corpo vazio, antes de auth.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
