// Package config carrega a configuração do gateway em camadas:
// defaults (struct) -> arquivo YAML opcional -> variáveis de ambiente.
//
// O arquivo vem de CONFIG_PATH ou de ./config.yaml. As variáveis de ambiente
// aceitas estão em envMappings; as demais são ignoradas.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Auth        AuthConfig        `koanf:"auth"`
	Rate        RateConfig        `koanf:"rate"`
	Stats       StatsConfig       `koanf:"stats"`
	Cache       CacheConfig       `koanf:"cache"`
	Concurrency ConcurrencyConfig `koanf:"concurrency"`
	Log         LogConfig         `koanf:"log"`
	ETL         ETLConfig         `koanf:"etl"`
}

type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	Version         string        `koanf:"version"`
	HandlerTimeout  time.Duration `koanf:"handler_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type AuthConfig struct {
	// APIKey é o segredo compartilhado exigido em todas as rotas menos health/metrics.
	APIKey string `koanf:"api_key" validate:"required"`
}

type RateConfig struct {
	Enabled           bool          `koanf:"enabled"`
	RequestsPerMinute int           `koanf:"requests_per_minute" validate:"gt=0"`
	RequestsPerHour   int           `koanf:"requests_per_hour" validate:"gte=0"`
	RequestsPerDay    int           `koanf:"requests_per_day" validate:"gte=0"`
	BurstLimit        int           `koanf:"burst_limit" validate:"gte=0"`
	Window            time.Duration `koanf:"window" validate:"gt=0"`
	CleanupEvery      time.Duration `koanf:"cleanup_every" validate:"gte=0"`
	KeyHeader         string        `koanf:"key_header"`
	TrustXFF          bool          `koanf:"trust_xff"`
}

type StatsConfig struct {
	RedisEnabled  bool          `koanf:"redis_enabled"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
	Prefix        string        `koanf:"prefix"`
	TTL           time.Duration `koanf:"ttl" validate:"gte=0"`
	Bucket        string        `koanf:"bucket" validate:"oneof=minute none"`
	TrackKeys     bool          `koanf:"track_keys"`
	TopEndpoints  int           `koanf:"top_endpoints" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl" validate:"gt=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gt=0"`
	Coalesce   bool          `koanf:"coalesce"`
}

type ConcurrencyConfig struct {
	Max     int           `koanf:"max" validate:"gte=0"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type ETLConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval" validate:"gt=0"`
	RPS       float64       `koanf:"rps" validate:"gt=0"`
	Burst     int           `koanf:"burst" validate:"gt=0"`
	QueueSize int           `koanf:"queue_size" validate:"gt=0"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Version:         "0.1.0",
			HandlerTimeout:  0,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{APIKey: "demo-api-key"},
		Rate: RateConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			RequestsPerDay:    10000,
			BurstLimit:        10,
			Window:            time.Minute,
			CleanupEvery:      2 * time.Minute,
			TrustXFF:          true,
		},
		Stats: StatsConfig{
			Prefix:       "gateway:stats",
			TTL:          24 * time.Hour,
			Bucket:       "minute",
			TopEndpoints: 5,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
			Coalesce:   true,
		},
		Concurrency: ConcurrencyConfig{Max: 100},
		Log:         LogConfig{Level: "info", Format: "json"},
		ETL: ETLConfig{
			Enabled:   false,
			Interval:  time.Hour,
			RPS:       1,
			Burst:     1,
			QueueSize: 16,
		},
	}
}

// Load lê defaults, o arquivo (se houver) e o ambiente, nessa ordem de precedência crescente.
func Load() (Config, error) {
	return load(findConfigFile())
}

func load(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checa as tags e as regras que cruzam campos.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Stats.RedisEnabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
