package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyLimiter_RejectsWhenNoSlot(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once

	// segura a única vaga até release fechar
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		w.WriteHeader(http.StatusOK)
	})

	lim := NewConcurrencyLimiter(ConcurrencyOptions{Max: 1, AcquireTimeout: 20 * time.Millisecond})
	h := lim.Middleware(next)

	first := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=a", nil))
		first <- rec.Code
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		close(release)
		t.Fatal("first request never reached the handler")
	}
	assert.Equal(t, 1, lim.InFlight())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=b", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"Service Unavailable"}`, rec.Body.String())

	close(release)
	require.Equal(t, http.StatusOK, <-first)
	assert.Equal(t, 0, lim.InFlight())
}

func TestConcurrencyLimiter_CustomStatus(t *testing.T) {
	lim := NewConcurrencyLimiter(ConcurrencyOptions{Max: 1, RejectStatus: http.StatusTooManyRequests, AcquireTimeout: time.Millisecond})
	block := make(chan struct{})
	entered := make(chan struct{})
	h := lim.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		close(entered)
		<-block
	}))

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		close(done)
	}()
	<-entered

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	close(block)
	<-done
}

func TestConcurrencyMiddleware_DisabledPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	lim := NewConcurrencyLimiter(ConcurrencyOptions{Max: 0})
	assert.Equal(t, 0, lim.InFlight())

	rec := httptest.NewRecorder()
	ConcurrencyMiddleware(ConcurrencyOptions{})(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
