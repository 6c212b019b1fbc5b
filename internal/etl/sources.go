package etl

import (
	"context"
	"time"

	"aircraft-gateway/internal/aircraft"
	"aircraft-gateway/middleware/ratelimit/domain"
)

const (
	SourceFAARegistry = "faa-registry"
	SourceNTSB        = "ntsb"
	SourceADs         = "ad-directives"
	SourceAirports    = "airports"
	SourceMETAR       = "metar"
	SourceADSB        = "adsb"
)

// StaticSource devolve sempre o lote produzido por Fetch. Fetch nil devolve lote vazio.
type StaticSource struct {
	SourceName string
	Fetch      func(now time.Time) Batch
	Clock      domain.Clock
}

func (s StaticSource) Name() string { return s.SourceName }

func (s StaticSource) FetchBatch(ctx context.Context, _ time.Time) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.Fetch == nil {
		return Batch{}, nil
	}
	clock := s.Clock
	if clock == nil {
		clock = domain.SystemClock
	}
	return s.Fetch(clock.Now()), nil
}

// DefaultSources são as fontes conhecidas. Só o registro FAA e o ADS-B trazem
// dados (os registros de demonstração); as demais ainda não têm parser.
func DefaultSources(clock domain.Clock) []Source {
	return []Source{
		StaticSource{
			SourceName: SourceFAARegistry,
			Clock:      clock,
			Fetch: func(time.Time) Batch {
				return Batch{Records: aircraft.SeedRecords()}
			},
		},
		StaticSource{SourceName: SourceNTSB, Clock: clock},
		StaticSource{SourceName: SourceADs, Clock: clock},
		StaticSource{SourceName: SourceAirports, Clock: clock},
		StaticSource{SourceName: SourceMETAR, Clock: clock},
		StaticSource{
			SourceName: SourceADSB,
			Clock:      clock,
			Fetch: func(now time.Time) Batch {
				return Batch{Positions: aircraft.SeedPositions(now)}
			},
		},
	}
}
