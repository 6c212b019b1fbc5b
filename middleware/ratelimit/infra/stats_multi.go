package infra

import (
	"context"
	"errors"

	"aircraft-gateway/middleware/ratelimit/domain"
)

// MultiStatsStore repassa cada evento para todos os sinks.
// Um sink com erro não impede os demais; os erros voltam juntos.
type MultiStatsStore []domain.StatsStore

func (m MultiStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
