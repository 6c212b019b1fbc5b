package cache

import (
	"sync"
	"time"
	"unicode/utf8"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 1000
)

// Entry é uma resposta guardada: corpo opaco + content type.
type Entry struct {
	Body        []byte
	ContentType string
	ExpiresAt   time.Time
}

// Stats é a foto do tamanho do cache.
type Stats struct {
	Entries int
	// MemoryBytes estima 2 bytes por caractere de chave e de corpo (custo UTF-16).
	MemoryBytes int64
}

// Store é um mapa chave -> Entry com TTL por entrada e capacidade máxima.
//
// Expiração é preguiçosa: Get apaga a entrada vencida e responde miss.
// Com o cache cheio, Set remove a entrada que vence primeiro (varredura O(n)).
type Store struct {
	mu         sync.Mutex
	entries    map[string]Entry
	ttl        time.Duration
	maxEntries int
	evictions  int64
}

type Option func(*Store)

func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]Entry),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) TTL() time.Duration { return s.ttl }
func (s *Store) MaxEntries() int    { return s.maxEntries }

// Get devolve a entrada de key se ela ainda não venceu em now.
func (s *Store) Get(key string, now time.Time) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if !now.Before(e.ExpiresAt) {
		delete(s.entries, key)
		return Entry{}, false
	}
	return e, true
}

// Set grava body sob key com validade now+TTL.
func (s *Store) Set(key string, body []byte, contentType string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictSoonestLocked()
	}
	s.entries[key] = Entry{
		Body:        body,
		ContentType: contentType,
		ExpiresAt:   now.Add(s.ttl),
	}
}

func (s *Store) evictSoonestLocked() {
	var (
		victim string
		soonest time.Time
		found   bool
	)
	for k, e := range s.entries {
		if !found || e.ExpiresAt.Before(soonest) {
			victim, soonest, found = k, e.ExpiresAt, true
		}
	}
	if found {
		delete(s.entries, victim)
		s.evictions++
	}
}

// Clear remove todas as entradas.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evictions conta as remoções por capacidade desde a criação.
func (s *Store) Evictions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictions
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Entries: len(s.entries)}
	for k, e := range s.entries {
		st.MemoryBytes += int64(2 * (utf8.RuneCountInString(k) + utf8.RuneCount(e.Body)))
	}
	return st
}

// Sweep apaga as entradas vencidas em now. Opcional: Get já expira sozinho.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if !now.Before(e.ExpiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}
