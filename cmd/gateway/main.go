package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aircraft-gateway/internal/aircraft"
	"aircraft-gateway/internal/api"
	"aircraft-gateway/internal/config"
	"aircraft-gateway/internal/etl"
	"aircraft-gateway/internal/logging"
	"aircraft-gateway/internal/metrics"
	"aircraft-gateway/internal/supervisor"
	"aircraft-gateway/middleware/cache"
	"aircraft-gateway/middleware/ratelimit"
	"aircraft-gateway/middleware/ratelimit/domain"
	"aircraft-gateway/middleware/ratelimit/infra"
	"aircraft-gateway/middleware/shaping"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config error")
	}
	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		Output: os.Stdout,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo := aircraft.NewMemoryRepository()
	if err := aircraft.Seed(ctx, repo, time.Now()); err != nil {
		logging.Fatal().Err(err).Msg("seed error")
	}

	store := infra.NewStore(
		cfg.Rate.RequestsPerMinute,
		infra.WithWindowSize(cfg.Rate.Window),
		infra.WithCleanupEvery(cfg.Rate.CleanupEvery),
	)
	responses := cache.NewStore(
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
	)

	recorder := metrics.NewRecorder(nil)
	sinks := []domain.StatsStore{recorder}

	if cfg.Stats.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		pingCancel()
		if err != nil {
			logging.Fatal().Err(err).Str("addr", cfg.Stats.RedisAddr).Msg("redis stats ping error")
		}

		sinks = append(sinks, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		))
	}

	identity := ratelimit.IdentityOptions{KeyHeader: cfg.Rate.KeyHeader}
	if !cfg.Rate.TrustXFF {
		identity.ClientIPHeaders = []string{}
		identity.UseRemoteAddr = true
	}

	gateOpts := shaping.Options{
		Limits: shaping.Limits{
			RequestsPerMinute: cfg.Rate.RequestsPerMinute,
			RequestsPerHour:   cfg.Rate.RequestsPerHour,
			RequestsPerDay:    cfg.Rate.RequestsPerDay,
			BurstLimit:        cfg.Rate.BurstLimit,
			Window:            cfg.Rate.Window,
		},
		Cache:        responses,
		CacheEnabled: cfg.Cache.Enabled,
		Coalesce:     cfg.Cache.Coalesce,
		Stats:        infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.Stats.TrackKeys)),
		Sinks:        sinks,
		OnStatsError: func(err error) {
			logging.Warn().Err(err).Msg("stats sink error")
		},
		Identity:     identity,
		TopEndpoints: cfg.Stats.TopEndpoints,
	}
	if cfg.Rate.Enabled {
		gateOpts.Limiter = store
	}
	gate := shaping.New(gateOpts)

	recorder.TrackGauge("cache_entries", "Entries in the response cache", func() float64 {
		return float64(responses.Len())
	})
	recorder.TrackGauge("ratelimit_active_clients", "Clients with an open rate limit window", func() float64 {
		return float64(store.Len())
	})

	h := api.NewRouter(api.Options{
		Repo:           repo,
		Gate:           gate,
		APIKey:         cfg.Auth.APIKey,
		KeyHeader:      cfg.Rate.KeyHeader,
		Version:        cfg.Server.Version,
		HandlerTimeout: cfg.Server.HandlerTimeout,
		Metrics:        metrics.Handler(nil),
	})
	inflight := ratelimit.NewConcurrencyLimiter(ratelimit.ConcurrencyOptions{
		Max:            cfg.Concurrency.Max,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.Concurrency.Timeout,
	})
	h = inflight.Middleware(h)
	recorder.TrackGauge("inflight_requests", "Requests holding a concurrency slot", func() float64 {
		return float64(inflight.InFlight())
	})

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	tree := supervisor.NewTree("aircraft-gateway", supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.Add(supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout))
	tree.Add(&supervisor.Janitor{Windows: store, Cache: responses, Every: store.CleanupEvery()})

	if cfg.ETL.Enabled {
		sources := etl.DefaultSources(domain.SystemClock)
		queue := etl.NewQueue(cfg.ETL.QueueSize)
		tree.Add(&etl.Scheduler{Sources: sources, Queue: queue, Interval: cfg.ETL.Interval})
		tree.Add(etl.NewConsumer(queue, repo, rate.NewLimiter(rate.Limit(cfg.ETL.RPS), cfg.ETL.Burst), nil, sources...))
	}

	logging.Info().
		Str("addr", cfg.Server.ListenAddr).
		Str("version", cfg.Server.Version).
		Msg("gateway listening")
	logging.Info().
		Bool("enabled", cfg.Rate.Enabled).
		Int("per_minute", cfg.Rate.RequestsPerMinute).
		Dur("window", cfg.Rate.Window).
		Str("key_header", cfg.Rate.KeyHeader).
		Bool("trust_xff", cfg.Rate.TrustXFF).
		Msg("rate")
	logging.Info().
		Bool("enabled", cfg.Cache.Enabled).
		Dur("ttl", cfg.Cache.TTL).
		Int("max_entries", cfg.Cache.MaxEntries).
		Bool("coalesce", cfg.Cache.Coalesce).
		Msg("cache")
	logging.Info().
		Bool("redis", cfg.Stats.RedisEnabled).
		Str("redis_addr", cfg.Stats.RedisAddr).
		Str("bucket", cfg.Stats.Bucket).
		Dur("ttl", cfg.Stats.TTL).
		Bool("track_keys", cfg.Stats.TrackKeys).
		Msg("rate-stats")
	logging.Info().
		Int("max", cfg.Concurrency.Max).
		Dur("acquire_timeout", cfg.Concurrency.Timeout).
		Msg("concurrency")
	logging.Info().
		Bool("enabled", cfg.ETL.Enabled).
		Dur("interval", cfg.ETL.Interval).
		Float64("rps", cfg.ETL.RPS).
		Msg("etl")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("supervisor error")
	}
	logging.Info().Msg("gateway stopped")
}
