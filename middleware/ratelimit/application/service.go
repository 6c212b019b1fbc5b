package application

import (
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão
// com os números que o adapter precisa para montar os headers X-RateLimit-*.
type Service struct {
	Store domain.WindowStore
	Clock domain.Clock
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// Decide registra uma tentativa de admissão para key e devolve a decisão.
//
// Sem Store tudo é permitido (gate desligado).
func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}

	now := s.now()
	allowed := s.Store.Admit(key, now)

	dec := domain.Decision{
		Allowed:   allowed,
		Limit:     s.Store.Limit(),
		Remaining: s.Store.Remaining(key, now),
		ResetAt:   s.Store.ResetEpochSeconds(key, now),
	}
	if !allowed {
		dec.Remaining = 0
		dec.RetryAfter = time.Duration(s.Store.RetryAfterSeconds(key, now)) * time.Second
	}
	return dec
}
