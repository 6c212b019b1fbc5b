package domain

import (
	"context"
	"time"
)

// CacheOutcome descreve o que o cache fez com a requisição.
type CacheOutcome string

const (
	// CacheBypass: cache desligado, método não cacheável ou resposta não armazenada.
	CacheBypass CacheOutcome = ""
	CacheHit    CacheOutcome = "hit"
	CacheMiss   CacheOutcome = "miss"
)

// StatsEvent representa o resultado de uma requisição que passou pelo gate.
//
// Method/Route são strings genéricas e servem para web, gRPC, etc.
//
// Route é o padrão da rota ("/api/aircraft/{tail}/summary"), nunca o caminho
// concreto: os contadores por rota precisam de cardinalidade limitada.
type StatsEvent struct {
	Key     Key
	Allowed bool

	Method string
	Route  string

	Cache CacheOutcome
	// Latency é zero para requisições bloqueadas (o handler não rodou).
	Latency time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do gate.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O middleware deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
