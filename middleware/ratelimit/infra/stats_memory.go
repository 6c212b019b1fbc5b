package infra

import (
	"context"
	"sort"
	"sync"
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"
)

// MaxLatencySamples é o tamanho da janela de amostras de latência (FIFO).
const MaxLatencySamples = 1000

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// EndpointCount é o total de requisições de uma rota ("GET /api/search").
type EndpointCount struct {
	Endpoint string `json:"endpoint"`
	Requests int64  `json:"requests"`
}

// Snapshot é uma foto consistente dos acumuladores.
type Snapshot struct {
	Total       int64
	Blocked     int64
	CacheHits   int64
	CacheMisses int64
	Latencies   []time.Duration
}

// MemoryStatsStore acumula as estatísticas do processo em memória.
//
// Não persiste nada e só zera via ResetRequests/ResetCache.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	hits      int64
	misses    int64
	latencies []time.Duration

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute:   make(map[string]Counters),
		byKey:     make(map[string]Counters),
		latencies: make([]time.Duration, 0, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	key := string(ev.Key)
	route := ev.Method + " " + ev.Route

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byRoute[route]
	k := s.byKey[key]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
		k.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
		k.Denied++
	}
	s.byRoute[route] = c
	if s.trackKeys {
		s.byKey[key] = k
	}

	switch ev.Cache {
	case domain.CacheHit:
		s.hits++
	case domain.CacheMiss:
		s.misses++
	}

	if ev.Allowed {
		s.latencies = append(s.latencies, ev.Latency)
		if n := len(s.latencies); n > MaxLatencySamples {
			s.latencies = append(s.latencies[:0], s.latencies[n-MaxLatencySamples:]...)
		}
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Total:       s.total.Allowed + s.total.Denied,
		Blocked:     s.total.Denied,
		CacheHits:   s.hits,
		CacheMisses: s.misses,
		Latencies:   append([]time.Duration(nil), s.latencies...),
	}
}

// ByRoute devolve uma cópia dos contadores por "METHOD padrão-da-rota".
func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

// TopEndpoints devolve as n rotas com mais requisições (admitidas + bloqueadas).
// Empates são desfeitos pelo nome da rota.
func (s *MemoryStatsStore) TopEndpoints(n int) []EndpointCount {
	s.mu.Lock()
	out := make([]EndpointCount, 0, len(s.byRoute))
	for route, c := range s.byRoute {
		out = append(out, EndpointCount{Endpoint: route, Requests: c.Allowed + c.Denied})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Requests != out[j].Requests {
			return out[i].Requests > out[j].Requests
		}
		return out[i].Endpoint < out[j].Endpoint
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ResetRequests zera total, bloqueados, latências e contadores por rota/chave.
func (s *MemoryStatsStore) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = Counters{}
	s.byRoute = make(map[string]Counters)
	s.byKey = make(map[string]Counters)
	s.latencies = s.latencies[:0]
}

// ResetCache zera os contadores de hit/miss.
func (s *MemoryStatsStore) ResetCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = 0
	s.misses = 0
}
