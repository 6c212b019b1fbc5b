package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"aircraft-gateway/middleware/cache"
	"aircraft-gateway/middleware/ratelimit/domain"
	"aircraft-gateway/middleware/ratelimit/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu       sync.Mutex
	stop     chan struct{}
	shutdown bool
	failWith error
}

func newFakeServer() *fakeServer { return &fakeServer{stop: make(chan struct{})} }

func (s *fakeServer) ListenAndServe() error {
	if s.failWith != nil {
		return s.failWith
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shutdown {
		s.shutdown = true
		close(s.stop)
	}
	return nil
}

func TestHTTPService_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
	assert.True(t, srv.shutdown)
}

func TestHTTPService_ReportsListenError(t *testing.T) {
	srv := newFakeServer()
	srv.failWith = errors.New("address in use")

	err := NewHTTPService(srv, time.Second).Serve(context.Background())
	assert.ErrorContains(t, err, "address in use")
}

func TestJanitor_Sweep(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := domain.ClockFunc(func() time.Time { return now })

	windows := infra.NewStore(10, infra.WithClock(clock))
	// a janela vencida entra depois da atual para que só o janitor possa removê-la
	windows.Admit("api:b", now)
	windows.Admit("api:a", now.Add(-3*time.Minute))
	require.Equal(t, 2, windows.Len())

	c := cache.NewStore(cache.WithTTL(time.Minute))
	c.Set("old", []byte(`{}`), "", now.Add(-2*time.Minute))
	c.Set("new", []byte(`{}`), "", now)

	j := &Janitor{Windows: windows, Cache: c, Clock: clock}
	require.Equal(t, 1, j.Sweep())
	assert.Equal(t, 1, windows.Len())
	_, ok := windows.Window("api:a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestNewTree_RunsServices(t *testing.T) {
	tree := NewTree("test", TreeConfig{ShutdownTimeout: time.Second})
	srv := newFakeServer()
	tree.Add(NewHTTPService(srv, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}
