package aircraft

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository mantém os registros em mapas protegidos por RWMutex.
// Serve tanto a API (Repository) quanto o ETL (Sink).
type MemoryRepository struct {
	mu        sync.RWMutex
	records   map[string]Record
	positions map[string]LivePosition
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Sink       = (*MemoryRepository)(nil)
)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:   make(map[string]Record),
		positions: make(map[string]LivePosition),
	}
}

func (m *MemoryRepository) Upsert(_ context.Context, rec Record) error {
	rec.Aircraft.Tail = NormalizeTail(rec.Aircraft.Tail)
	if rec.Aircraft.Tail == "" {
		return ErrNotFound
	}
	m.mu.Lock()
	m.records[rec.Aircraft.Tail] = rec
	m.mu.Unlock()
	return nil
}

// UpdatePosition só aceita posições de matrículas conhecidas.
func (m *MemoryRepository) UpdatePosition(_ context.Context, pos LivePosition) error {
	pos.Tail = NormalizeTail(pos.Tail)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[pos.Tail]; !ok {
		return ErrNotFound
	}
	if cur, ok := m.positions[pos.Tail]; ok && cur.TS > pos.TS {
		return nil
	}
	m.positions[pos.Tail] = pos
	return nil
}

func (m *MemoryRepository) get(tail string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[NormalizeTail(tail)]
	return rec, ok
}

func (m *MemoryRepository) Summary(_ context.Context, tail string) (Summary, error) {
	rec, ok := m.get(tail)
	if !ok {
		return Summary{}, ErrNotFound
	}
	return rec.Summary(), nil
}

func (m *MemoryRepository) History(_ context.Context, tail string) (History, error) {
	rec, ok := m.get(tail)
	if !ok {
		return History{}, ErrNotFound
	}
	return rec.History, nil
}

func (m *MemoryRepository) Live(_ context.Context, tail string) (LivePosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.positions[NormalizeTail(tail)]
	if !ok {
		return LivePosition{}, ErrNoLiveData
	}
	return pos, nil
}

// Search procura term (sem diferenciar maiúsculas) em matrícula, fabricante e
// modelo. Termo vazio não casa com nada.
func (m *MemoryRepository) Search(_ context.Context, term string) ([]Aircraft, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []Aircraft{}
	if term == "" {
		return out, nil
	}

	m.mu.RLock()
	for _, rec := range m.records {
		a := rec.Aircraft
		if strings.Contains(strings.ToLower(a.Tail), term) ||
			strings.Contains(strings.ToLower(a.Make), term) ||
			strings.Contains(strings.ToLower(a.Model), term) {
			out = append(out, a)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Tail < out[j].Tail })
	return out, nil
}

// LivePositions devolve até limit posições, ordenadas por matrícula.
// limit <= 0 devolve todas.
func (m *MemoryRepository) LivePositions(_ context.Context, limit int) ([]LivePosition, error) {
	m.mu.RLock()
	out := make([]LivePosition, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Tail < out[j].Tail })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
