package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore espelha os eventos do gate em hashes do Redis.
//
// Layout (prefix padrão "gateway:stats"):
//
//	<prefix>:total               allowed | denied | cache_hit | cache_miss | latency_ms
//	<prefix>:minute:<yyyymmddhhmm> idem, com TTL
//	<prefix>:route               "<METHOD> <path>:<campo>"
//	<prefix>:key:<key>           allowed | denied (só com trackKeys)
//
// Nada aqui é lido de volta pelo gate; é só um sink.
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por key.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "gateway:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys devolve as chaves de total, bucket e rota que um evento em at tocaria.
func (s *RedisStatsStore) Keys(at time.Time) (total, bucket, route string) {
	total = s.prefix + ":total"
	if s.bucket == "minute" {
		bucket = fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	}
	route = s.prefix + ":route"
	return total, bucket, route
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	totalKey, bucketKey, routeKey := s.Keys(at)

	pipe := s.rdb.Pipeline()
	incr := func(key string) {
		pipe.HIncrBy(ctx, key, field, 1)
		if ev.Cache != domain.CacheBypass {
			pipe.HIncrBy(ctx, key, "cache_"+string(ev.Cache), 1)
		}
		if ev.Latency > 0 {
			pipe.HIncrBy(ctx, key, "latency_ms", ev.Latency.Milliseconds())
		}
	}

	incr(totalKey)
	if bucketKey != "" {
		incr(bucketKey)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	routeField := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Route))
	if routeField != "" {
		pipe.HIncrBy(ctx, routeKey, routeField+":"+field, 1)
	}

	if s.trackKeys {
		k := strings.TrimSpace(string(ev.Key))
		if k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
