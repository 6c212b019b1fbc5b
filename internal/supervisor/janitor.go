package supervisor

import (
	"context"
	"time"

	"aircraft-gateway/internal/logging"
	"aircraft-gateway/middleware/ratelimit/domain"
)

// WindowCleaner é o store de janelas do rate limit.
type WindowCleaner interface {
	CleanupExpired(windowStart time.Time)
	WindowSize() time.Duration
}

// CacheSweeper é o cache de respostas.
type CacheSweeper interface {
	Sweep(now time.Time) int
}

// Janitor limpa periodicamente janelas vencidas e entradas expiradas do cache.
// Os dois já expiram sob demanda; o janitor só limita a memória de chaves paradas.
type Janitor struct {
	Windows WindowCleaner
	Cache   CacheSweeper
	Every   time.Duration
	Clock   domain.Clock
}

// Sweep roda uma passada e devolve quantas entradas de cache saíram.
func (j *Janitor) Sweep() int {
	clock := j.Clock
	if clock == nil {
		clock = domain.SystemClock
	}
	now := clock.Now()
	if j.Windows != nil {
		j.Windows.CleanupExpired(now.Add(-j.Windows.WindowSize()))
	}
	if j.Cache != nil {
		return j.Cache.Sweep(now)
	}
	return 0
}

func (j *Janitor) Serve(ctx context.Context) error {
	every := j.Every
	if every <= 0 {
		every = 2 * time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if n := j.Sweep(); n > 0 {
				logging.Debug().Int("cache_evicted", n).Msg("janitor sweep")
			}
		}
	}
}

func (j *Janitor) String() string { return "janitor" }
