package etl

import (
	"context"
	"time"

	"aircraft-gateway/internal/logging"
	"aircraft-gateway/middleware/ratelimit/domain"
)

// Scheduler enfileira um Job por fonte a cada Interval. A primeira rodada sai
// logo no início do Serve.
type Scheduler struct {
	Sources  []Source
	Queue    *Queue
	Interval time.Duration
	Clock    domain.Clock

	last map[string]time.Time
}

// Tick enfileira uma rodada e devolve quantos jobs entraram na fila.
func (s *Scheduler) Tick() int {
	if s.Clock == nil {
		s.Clock = domain.SystemClock
	}
	if s.last == nil {
		s.last = make(map[string]time.Time, len(s.Sources))
	}

	now := s.Clock.Now()
	n := 0
	for _, src := range s.Sources {
		job := NewJob(src.Name(), s.last[src.Name()], now)
		if !s.Queue.Offer(job) {
			logging.Warn().Str("source", job.Source).Msg("etl queue full, job dropped")
			continue
		}
		s.last[src.Name()] = now
		n++
	}
	return n
}

// Serve implementa suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.Tick()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Tick()
		}
	}
}

func (s *Scheduler) String() string { return "etl-scheduler" }
