package ratelimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aircraft-gateway/middleware/ratelimit/domain"
	"aircraft-gateway/middleware/ratelimit/infra"

	"github.com/goccy/go-json"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *manualClock { return &manualClock{now: time.Unix(1_700_000_000, 0)} }

func TestMiddleware_AllowsThenRejectsSameKey(t *testing.T) {
	clock := newClock()
	store := infra.NewStore(1)
	stats := infra.NewMemoryStatsStore()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	h := Middleware(Options{
		Store:               store,
		Stats:               stats,
		Clock:               clock,
		AddRateLimitHeaders: true,
	})(next)

	// 1) primeira passa
	r1 := httptest.NewRequest(http.MethodGet, "http://example/api/search", nil)
	r1.Header.Set("X-Forwarded-For", "10.0.0.1")
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	if got := w1.Header().Get(HeaderLimit); got != "1" {
		t.Fatalf("expected X-RateLimit-Limit=1, got %q", got)
	}
	if got := w1.Header().Get(HeaderRemaining); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}

	// 2) segunda deve bloquear (teto=1 na mesma janela)
	clock.Advance(20 * time.Second)
	r2 := httptest.NewRequest(http.MethodGet, "http://example/api/search", nil)
	r2.Header.Set("X-Forwarded-For", "10.0.0.1")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if got := w2.Header().Get(HeaderRetryAfter); got != "40" {
		t.Fatalf("expected Retry-After=40, got %q", got)
	}
	if got := w2.Header().Get(HeaderReset); got != "1700000060" {
		t.Fatalf("expected X-RateLimit-Reset=1700000060, got %q", got)
	}

	var body RejectionBody
	if err := json.Unmarshal(w2.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body, got %q: %v", w2.Body.String(), err)
	}
	if body.Error != "Rate limit exceeded" || body.RetryAfter != 40 {
		t.Fatalf("unexpected body: %+v", body)
	}

	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
	if tot := stats.Total(); tot.Allowed != 1 || tot.Denied != 1 {
		t.Fatalf("unexpected stats: %+v", tot)
	}
}

func TestMiddleware_KeyByHeader(t *testing.T) {
	store := infra.NewStore(1)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{
		Store:    store,
		Identity: IdentityOptions{KeyHeader: "X-Api-Key"},
	})(next)

	// duas chaves diferentes => ambas devem passar (cada chave tem sua própria janela)
	for _, key := range []string{"k1", "k2"} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("X-Api-Key", key)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for key %s, got %d", key, w.Code)
		}
	}
}

func TestMiddleware_WindowResetAdmitsAgain(t *testing.T) {
	clock := newClock()
	h := Middleware(Options{
		Store: infra.NewStore(1, infra.WithWindowSize(time.Minute)),
		Clock: clock,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func() int {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	if do() != http.StatusOK {
		t.Fatalf("expected first request admitted")
	}
	if do() != http.StatusTooManyRequests {
		t.Fatalf("expected second request denied")
	}
	clock.Advance(time.Minute)
	if code := do(); code != http.StatusOK {
		t.Fatalf("expected admit after window reset, got %d", code)
	}
}

func TestReject_NeverAdvertisesZeroRetry(t *testing.T) {
	w := httptest.NewRecorder()
	Reject(w, domain.Decision{Limit: 5, RetryAfter: 200 * time.Millisecond})

	if got := strings.TrimSpace(w.Header().Get(HeaderRetryAfter)); got != "1" {
		t.Fatalf("expected Retry-After=1, got %q", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
}
