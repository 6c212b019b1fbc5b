package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"aircraft-gateway/internal/aircraft"
	"aircraft-gateway/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var fixedNow = domain.ClockFunc(func() time.Time { return time.Unix(1_700_000_000, 0) })

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) FetchBatch(context.Context, time.Time) (Batch, error) {
	return Batch{}, errors.New("upstream down")
}

func TestQueue_OfferDropsWhenFull(t *testing.T) {
	q := NewQueue(1)
	assert.True(t, q.Offer(Job{Source: "a"}))
	assert.False(t, q.Offer(Job{Source: "b"}))
	assert.Equal(t, 1, q.Len())

	job, err := q.Take(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", job.Source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = q.Take(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_TickEnqueuesOneJobPerSource(t *testing.T) {
	q := NewQueue(16)
	s := &Scheduler{Sources: DefaultSources(fixedNow), Queue: q, Clock: fixedNow}

	assert.Equal(t, 6, s.Tick())
	assert.Equal(t, 6, q.Len())

	first, _ := q.Take(context.Background())
	assert.True(t, first.Since.IsZero(), "first run fetches everything")
	assert.NotEqual(t, first.ID.String(), "00000000-0000-0000-0000-000000000000")

	for q.Len() > 0 {
		_, _ = q.Take(context.Background())
	}
	s.Tick()
	second, _ := q.Take(context.Background())
	assert.Equal(t, fixedNow.Now(), second.Since)
}

func TestConsumer_ProcessAppliesBatch(t *testing.T) {
	repo := aircraft.NewMemoryRepository()
	sources := DefaultSources(fixedNow)
	c := NewConsumer(NewQueue(4), repo, rate.NewLimiter(rate.Inf, 1), fixedNow, sources...)
	ctx := context.Background()

	// posições antes dos registros: matrículas ainda desconhecidas
	res, err := c.Process(ctx, NewJob(SourceADSB, time.Time{}, fixedNow.Now()))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Positions)
	assert.Equal(t, 3, res.Rejected)

	res, err = c.Process(ctx, NewJob(SourceFAARegistry, time.Time{}, fixedNow.Now()))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Records)
	assert.Equal(t, 4, repo.Len())

	res, err = c.Process(ctx, NewJob(SourceADSB, time.Time{}, fixedNow.Now()))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Positions)

	res, err = c.Process(ctx, NewJob(SourceMETAR, time.Time{}, fixedNow.Now()))
	require.NoError(t, err)
	assert.Zero(t, res.Records+res.Positions)
}

func TestConsumer_ProcessErrors(t *testing.T) {
	c := NewConsumer(NewQueue(1), aircraft.NewMemoryRepository(), nil, fixedNow, failingSource{})
	ctx := context.Background()

	_, err := c.Process(ctx, Job{Source: "missing"})
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = c.Process(ctx, Job{Source: "broken"})
	assert.ErrorContains(t, err, "upstream down")
}

func TestConsumer_ServeDrainsQueueUntilCanceled(t *testing.T) {
	repo := aircraft.NewMemoryRepository()
	q := NewQueue(4)
	c := NewConsumer(q, repo, nil, fixedNow, DefaultSources(fixedNow)...)

	require.True(t, q.Offer(NewJob(SourceFAARegistry, time.Time{}, fixedNow.Now())))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	require.Eventually(t, func() bool { return repo.Len() == 4 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
