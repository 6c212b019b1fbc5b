package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aircraft-gateway/internal/logging"
	"aircraft-gateway/middleware/cache"
	"aircraft-gateway/middleware/ratelimit"
	"aircraft-gateway/middleware/ratelimit/infra"
	"aircraft-gateway/middleware/shaping"

	"github.com/goccy/go-json"
)

func main() {
	// Exemplo: injetando o gate diretamente no seu webserver (sem router)
	store := infra.NewStore(5)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "path": r.URL.Path})
	})

	identity := ratelimit.IdentityOptions{KeyHeader: "X-Api-Key"} // sem chave usa o IP
	gate := shaping.New(shaping.Options{
		Limiter:      store,
		Cache:        cache.NewStore(cache.WithTTL(30 * time.Second)),
		CacheEnabled: true,
		Coalesce:     true,
		Identity:     identity,
	})

	h := http.Handler(mux)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 50})(h)
	if os.Getenv("EXAMPLE_CACHE") == "false" {
		// só rate limit, sem cache de respostas
		h = ratelimit.Middleware(ratelimit.Options{
			Store:               store,
			Identity:            identity,
			AddRateLimitHeaders: true,
		})(h)
	} else {
		h = gate.Handler(h)
	}

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info().Str("addr", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Fatal().Err(err).Msg("server error")
	}
}
