package application

import (
	"context"
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService pega e devolve vagas do SlotPool respeitando AcquireTimeout.
// Pool nil libera tudo.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire espera por uma vaga até ctx terminar ou, com AcquireTimeout > 0,
// até o timeout. ok=false significa que nada foi adquirido e release é nil.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}

// InFlight é o número de vagas ocupadas agora.
func (s ConcurrencyService) InFlight() int {
	if s.Pool == nil {
		return 0
	}
	return s.Pool.InUse()
}
