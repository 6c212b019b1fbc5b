package config

import "strings"

// envMappings liga as variáveis de ambiente aos caminhos do koanf.
// Os nomes herdados do gateway original (RATE_*, CONCURRENCY_*, LISTEN_ADDR) continuam valendo.
var envMappings = map[string]string{
	"listen_addr":      "server.listen_addr",
	"api_version":      "server.version",
	"handler_timeout":  "server.handler_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"api_key": "auth.api_key",

	"rate_enabled":             "rate.enabled",
	"rate_requests_per_minute": "rate.requests_per_minute",
	"rate_requests_per_hour":   "rate.requests_per_hour",
	"rate_requests_per_day":    "rate.requests_per_day",
	"rate_burst":               "rate.burst_limit",
	"rate_window":              "rate.window",
	"rate_cleanup_every":       "rate.cleanup_every",
	"rate_key_header":          "rate.key_header",
	"trust_xff":                "rate.trust_xff",

	"rate_stats_enabled":        "stats.redis_enabled",
	"rate_stats_redis_addr":     "stats.redis_addr",
	"rate_stats_redis_password": "stats.redis_password",
	"rate_stats_redis_db":       "stats.redis_db",
	"rate_stats_prefix":         "stats.prefix",
	"rate_stats_ttl":            "stats.ttl",
	"rate_stats_bucket":         "stats.bucket",
	"rate_stats_track_keys":     "stats.track_keys",
	"rate_stats_top_endpoints":  "stats.top_endpoints",

	"cache_enabled":     "cache.enabled",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",
	"cache_coalesce":    "cache.coalesce",

	"concurrency_max":     "concurrency.max",
	"concurrency_timeout": "concurrency.timeout",

	"log_level":  "log.level",
	"log_format": "log.format",
	"log_caller": "log.caller",

	"etl_enabled":    "etl.enabled",
	"etl_interval":   "etl.interval",
	"etl_rps":        "etl.rps",
	"etl_burst":      "etl.burst",
	"etl_queue_size": "etl.queue_size",
}

// envTransformFunc devolve "" para variáveis desconhecidas, que o koanf descarta.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
