package infra

import (
	"sync"
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"
)

const (
	DefaultRequestsPerMinute = 60
	DefaultWindowSize        = time.Minute
	// DefaultRetryAfterSeconds é usado quando não existe janela para a chave.
	DefaultRetryAfterSeconds = 60

	// sweepDivisions limita a varredura dentro de Admit a uma por windowSize/sweepDivisions.
	sweepDivisions = 4
)

// Store é um contador de janela fixa por chave, em memória.
//
// A janela nasce no primeiro pedido da chave (ou após expirar) e dura windowSize.
// Na virada da janela um cliente pode passar até 2x o teto; aceitável para o gate.
type Store struct {
	mu           sync.Mutex
	windows      map[domain.Key]*domain.Window
	limit        int
	windowSize   time.Duration
	cleanupEvery time.Duration
	clock        domain.Clock
	lastSweep    time.Time
}

type StoreOption func(*Store)

func WithWindowSize(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.windowSize = d
		}
	}
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithClock troca o relógio usado pelo janitor.
func WithClock(c domain.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

func NewStore(requestsPerMinute int, opts ...StoreOption) *Store {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	s := &Store{
		windows:      make(map[domain.Key]*domain.Window),
		limit:        requestsPerMinute,
		windowSize:   DefaultWindowSize,
		cleanupEvery: 2 * time.Minute,
		clock:        domain.SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Limit() int                  { return s.limit }
func (s *Store) WindowSize() time.Duration   { return s.windowSize }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// Admit implementa domain.WindowStore. Janelas vencidas saem aqui no máximo
// uma vez a cada windowSize/4; entre uma varredura e outra fica com o janitor.
func (s *Store) Admit(key domain.Key, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.windowSize/sweepDivisions {
		s.cleanupExpiredLocked(now.Add(-s.windowSize))
		s.lastSweep = now
	}

	w, ok := s.windows[key]
	if !ok || w.Expired(now) {
		w = &domain.Window{ResetAt: now.Add(s.windowSize)}
		s.windows[key] = w
	}
	if w.Count >= s.limit {
		return false
	}
	w.Count++
	return true
}

func (s *Store) Remaining(key domain.Key, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return s.limit
	}
	return max(0, s.limit-w.Count)
}

func (s *Store) RetryAfterSeconds(key domain.Key, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return DefaultRetryAfterSeconds
	}
	left := w.ResetAt.Sub(now)
	secs := int((left + time.Second - 1) / time.Second)
	return max(1, secs)
}

func (s *Store) ResetEpochSeconds(key domain.Key, now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[key]; ok {
		return w.ResetAt.Unix()
	}
	return now.Add(s.windowSize).Unix()
}

// Window devolve uma cópia da janela da chave (para diagnóstico e testes).
func (s *Store) Window(key domain.Key) (domain.Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return domain.Window{}, false
	}
	return *w, true
}

// Len é o número de janelas guardadas (expiradas ou não).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// CleanupExpired remove toda janela com ResetAt <= windowStart.
func (s *Store) CleanupExpired(windowStart time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupExpiredLocked(windowStart)
}

func (s *Store) cleanupExpiredLocked(windowStart time.Time) {
	for k, w := range s.windows {
		if !w.ResetAt.After(windowStart) {
			delete(s.windows, k)
		}
	}
}

// Clear descarta todas as janelas.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = make(map[domain.Key]*domain.Window)
	s.lastSweep = time.Time{}
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.CleanupExpired(s.clock.Now().Add(-s.windowSize))
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
