package shaping

import (
	"time"

	"aircraft-gateway/middleware/ratelimit/infra"
)

type RateLimitStats struct {
	TotalRequests   int64 `json:"totalRequests"`
	BlockedRequests int64 `json:"blockedRequests"`
	// AverageResponseTime é a média das últimas amostras de latência, em ms.
	AverageResponseTime float64 `json:"averageResponseTime"`
	// CacheHitRate em porcentagem (0–100).
	CacheHitRate  float64               `json:"cacheHitRate"`
	TopEndpoints  []infra.EndpointCount `json:"topEndpoints"`
	Limits        Limits                `json:"limits"`
	ActiveClients int                   `json:"activeClients"`
	// Routes traz admitidas/bloqueadas de cada rota, chaveado como TopEndpoints.
	Routes map[string]infra.Counters `json:"routes"`
}

type CacheStats struct {
	Enabled    bool    `json:"enabled"`
	Size       int     `json:"size"`
	MaxEntries int     `json:"maxEntries"`
	TTLMs      int64   `json:"ttlMs"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hitRate"`
	Evictions  int64   `json:"evictions"`
	// MemoryUsage é a estimativa em bytes (2 bytes por caractere de chave e corpo).
	MemoryUsage int64 `json:"memoryUsage"`
}

type windowCounter interface {
	Len() int
}

func (g *Gate) RateLimitStats() RateLimitStats {
	snap := g.stats.Snapshot()

	st := RateLimitStats{
		TotalRequests:       snap.Total,
		BlockedRequests:     snap.Blocked,
		AverageResponseTime: averageMs(snap.Latencies),
		CacheHitRate:        hitRate(snap.CacheHits, snap.CacheMisses),
		TopEndpoints:        g.stats.TopEndpoints(g.topN),
		Limits:              g.limits,
		Routes:              g.stats.ByRoute(),
	}
	if wc, ok := g.limiter.(windowCounter); ok {
		st.ActiveClients = wc.Len()
	}
	return st
}

func (g *Gate) CacheStats() CacheStats {
	snap := g.stats.Snapshot()
	st := CacheStats{
		Enabled: g.cacheEnabled,
		Hits:    snap.CacheHits,
		Misses:  snap.CacheMisses,
		HitRate: hitRate(snap.CacheHits, snap.CacheMisses),
	}
	if g.cache != nil {
		cs := g.cache.Stats()
		st.Size = cs.Entries
		st.MemoryUsage = cs.MemoryBytes
		st.MaxEntries = g.cache.MaxEntries()
		st.TTLMs = g.cache.TTL().Milliseconds()
		st.Evictions = g.cache.Evictions()
	}
	return st
}

// ClearRateLimits descarta as janelas e zera total/bloqueados.
func (g *Gate) ClearRateLimits() {
	if g.limiter != nil {
		g.limiter.Clear()
	}
	g.stats.ResetRequests()
}

// ClearCache apaga as entradas e zera hits/misses.
func (g *Gate) ClearCache() {
	if g.cache != nil {
		g.cache.Clear()
	}
	g.stats.ResetCache()
}

func averageMs(samples []time.Duration) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range samples {
		sum += d
	}
	return float64(sum) / float64(len(samples)) / float64(time.Millisecond)
}

func hitRate(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}
