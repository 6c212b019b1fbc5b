package etl

import (
	"context"
	"fmt"

	"aircraft-gateway/internal/aircraft"
	"aircraft-gateway/internal/logging"
	"aircraft-gateway/middleware/ratelimit/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Consumer consome a fila, busca cada lote na fonte e grava no Sink.
// Limiter controla o ritmo das buscas; nil não limita.
type Consumer struct {
	sources map[string]Source
	queue   *Queue
	sink    aircraft.Sink
	limiter *rate.Limiter
	clock   domain.Clock
	log     zerolog.Logger
}

func NewConsumer(queue *Queue, sink aircraft.Sink, limiter *rate.Limiter, clock domain.Clock, sources ...Source) *Consumer {
	if clock == nil {
		clock = domain.SystemClock
	}
	byName := make(map[string]Source, len(sources))
	for _, s := range sources {
		byName[s.Name()] = s
	}
	return &Consumer{
		sources: byName,
		queue:   queue,
		sink:    sink,
		limiter: limiter,
		clock:   clock,
		log:     logging.With().Str("component", "etl-consumer").Logger(),
	}
}

// Process executa um job. Erro da fonte ou do contexto aborta o job; itens
// recusados pelo sink só entram em Result.Rejected.
func (c *Consumer) Process(ctx context.Context, job Job) (Result, error) {
	res := Result{Job: job}
	src, ok := c.sources[job.Source]
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrUnknownSource, job.Source)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return res, err
		}
	}

	start := c.clock.Now()
	batch, err := src.FetchBatch(ctx, job.Since)
	if err != nil {
		return res, fmt.Errorf("fetch %s: %w", job.Source, err)
	}

	for _, rec := range batch.Records {
		if err := c.sink.Upsert(ctx, rec); err != nil {
			res.Rejected++
			continue
		}
		res.Records++
	}
	for _, pos := range batch.Positions {
		if err := c.sink.UpdatePosition(ctx, pos); err != nil {
			res.Rejected++
			continue
		}
		res.Positions++
	}
	res.Took = c.clock.Now().Sub(start)
	return res, nil
}

// Serve implementa suture.Service. Falha de um job é logada e não derruba o serviço.
func (c *Consumer) Serve(ctx context.Context) error {
	for {
		job, err := c.queue.Take(ctx)
		if err != nil {
			return err
		}

		res, err := c.Process(ctx, job)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Str("job_id", job.ID.String()).Str("source", job.Source).Msg("etl job failed")
			continue
		}
		c.log.Info().
			Str("job_id", job.ID.String()).
			Str("source", job.Source).
			Int("records", res.Records).
			Int("positions", res.Positions).
			Int("rejected", res.Rejected).
			Dur("took", res.Took).
			Msg("etl job done")
	}
}

func (c *Consumer) String() string { return "etl-consumer" }
