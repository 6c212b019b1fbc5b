package ratelimit

import (
	"net/http"
	"time"

	"aircraft-gateway/middleware/ratelimit/application"
	"aircraft-gateway/middleware/ratelimit/infra"

	"github.com/goccy/go-json"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyLimiter segura no máximo Max requisições ao mesmo tempo.
type ConcurrencyLimiter struct {
	svc          application.ConcurrencyService
	rejectStatus int
}

// NewConcurrencyLimiter cria o limitador. Max <= 0 desliga o limite.
func NewConcurrencyLimiter(opts ConcurrencyOptions) *ConcurrencyLimiter {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	l := &ConcurrencyLimiter{rejectStatus: opts.RejectStatus}
	if opts.Max > 0 {
		l.svc = application.ConcurrencyService{
			Pool:           infra.NewChanPool(opts.Max),
			AcquireTimeout: opts.AcquireTimeout,
		}
	}
	return l
}

// InFlight é quantas requisições estão dentro do limitador agora.
func (l *ConcurrencyLimiter) InFlight() int { return l.svc.InFlight() }

func (l *ConcurrencyLimiter) Middleware(next http.Handler) http.Handler {
	if l.svc.Pool == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		release, ok := l.svc.Acquire(r.Context())
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(l.rejectStatus)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(l.rejectStatus)})
			return
		}
		defer release()

		next.ServeHTTP(w, r)
	})
}

// ConcurrencyMiddleware é o atalho para NewConcurrencyLimiter(opts).Middleware.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	return NewConcurrencyLimiter(opts).Middleware
}
