// Package etl alimenta o repositório de aeronaves a partir de fontes externas.
//
// Fluxo: Scheduler (intervalo) -> Queue (limitada) -> Consumer, que busca o
// lote na fonte com ritmo controlado e grava no aircraft.Sink. Scheduler e
// Consumer são serviços suture.
//
// As fontes não fazem parsing real: devolvem lotes fixos ou vazios.
package etl

import (
	"context"
	"errors"
	"time"

	"aircraft-gateway/internal/aircraft"

	"github.com/google/uuid"
)

var ErrUnknownSource = errors.New("etl: unknown source")

// Batch é o que uma fonte devolve numa busca.
type Batch struct {
	Records   []aircraft.Record
	Positions []aircraft.LivePosition
}

func (b Batch) Len() int { return len(b.Records) + len(b.Positions) }

// Source é um adaptador de dados externo. since é o início da última busca
// enfileirada para a fonte (zero na primeira).
type Source interface {
	Name() string
	FetchBatch(ctx context.Context, since time.Time) (Batch, error)
}

type Job struct {
	ID         uuid.UUID
	Source     string
	Since      time.Time
	EnqueuedAt time.Time
}

func NewJob(source string, since, now time.Time) Job {
	return Job{
		ID:         uuid.New(),
		Source:     source,
		Since:      since,
		EnqueuedAt: now,
	}
}

// Result resume a execução de um Job.
type Result struct {
	Job       Job
	Records   int
	Positions int
	// Rejected conta itens que o sink recusou (ex.: posição de matrícula desconhecida).
	Rejected int
	Took     time.Duration
}
