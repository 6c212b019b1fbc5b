package shaping

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"aircraft-gateway/middleware/cache"
	"aircraft-gateway/middleware/ratelimit"
	"aircraft-gateway/middleware/ratelimit/application"
	"aircraft-gateway/middleware/ratelimit/domain"
	"aircraft-gateway/middleware/ratelimit/infra"

	"github.com/goccy/go-json"
)

const (
	HeaderCache    = "X-Cache"
	HeaderCacheTTL = "X-Cache-TTL"

	CacheHit  = "HIT"
	CacheMiss = "MISS"
)

// Limiter é o que o gate precisa do rate limiter: decidir e poder zerar.
type Limiter interface {
	domain.WindowStore
	Clear()
}

// Limits são os tetos configurados. Só RequestsPerMinute participa da admissão;
// hora, dia e burst são informativos e aparecem nas estatísticas.
type Limits struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	RequestsPerHour   int           `json:"requestsPerHour"`
	RequestsPerDay    int           `json:"requestsPerDay"`
	BurstLimit        int           `json:"burstLimit"`
	Window            time.Duration `json:"-"`
	WindowMs          int64         `json:"windowSizeMs"`
}

type Options struct {
	Limiter Limiter
	Limits  Limits

	// Cache nil desliga o cache, assim como CacheEnabled=false.
	Cache        *cache.Store
	CacheEnabled bool
	// Coalesce junta misses simultâneos da mesma chave numa chamada ao handler.
	Coalesce bool

	// Stats acumula as estatísticas expostas por RateLimitStats/CacheStats.
	// Nil cria um MemoryStatsStore novo.
	Stats *infra.MemoryStatsStore
	// Sinks recebem os mesmos eventos (Redis, Prometheus...). Best-effort.
	Sinks        []domain.StatsStore
	OnStatsError func(error)

	Clock    domain.Clock
	KeyFn    ratelimit.KeyFunc
	Identity ratelimit.IdentityOptions
	// RouteFn nomeia a rota nas estatísticas. Nil usa ratelimit.DefaultRoute.
	RouteFn ratelimit.RouteFunc

	// TopEndpoints é quantas rotas entram em RateLimitStats. Padrão 5.
	TopEndpoints int
}

// Gate é o middleware de rate limit + cache de respostas.
//
// Uma instância por processo; todo o estado (janelas, cache, estatísticas)
// vive nela e é protegido por mutex nos stores.
type Gate struct {
	svc          application.Service
	limiter      Limiter
	limits       Limits
	cache        *cache.Store
	cacheEnabled bool
	flight       *cache.Coalescer[*captured]
	stats        *infra.MemoryStatsStore
	sink         domain.StatsStore
	onStatsError func(error)
	clock        domain.Clock
	keyFn        ratelimit.KeyFunc
	routeFn      ratelimit.RouteFunc
	topN         int
}

func New(opts Options) *Gate {
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ratelimit.DefaultKeyFunc(opts.Identity)
	}
	if opts.RouteFn == nil {
		opts.RouteFn = ratelimit.DefaultRoute
	}
	if opts.Stats == nil {
		opts.Stats = infra.NewMemoryStatsStore()
	}
	if opts.TopEndpoints <= 0 {
		opts.TopEndpoints = 5
	}
	if opts.Limiter != nil && opts.Limits.RequestsPerMinute == 0 {
		opts.Limits.RequestsPerMinute = opts.Limiter.Limit()
	}
	if opts.Limits.Window > 0 && opts.Limits.WindowMs == 0 {
		opts.Limits.WindowMs = opts.Limits.Window.Milliseconds()
	}

	sinks := infra.MultiStatsStore{opts.Stats}
	sinks = append(sinks, opts.Sinks...)

	g := &Gate{
		svc:          application.Service{Clock: opts.Clock},
		limiter:      opts.Limiter,
		limits:       opts.Limits,
		cache:        opts.Cache,
		cacheEnabled: opts.CacheEnabled && opts.Cache != nil,
		flight:       cache.NewCoalescer[*captured](opts.Coalesce),
		stats:        opts.Stats,
		sink:         sinks,
		onStatsError: opts.OnStatsError,
		clock:        opts.Clock,
		keyFn:        opts.KeyFn,
		routeFn:      opts.RouteFn,
		topN:         opts.TopEndpoints,
	}
	if opts.Limiter != nil {
		g.svc.Store = opts.Limiter
	}
	return g
}

// Middleware devolve o gate no formato func(http.Handler) http.Handler (chi).
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return g.Handler
}

func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := g.clock.Now()
		key := domain.Key(g.keyFn(r))

		ev := domain.StatsEvent{
			Key:    key,
			Method: r.Method,
			Route:  g.routeFn(r),
			At:     start,
		}

		dec := g.svc.Decide(key)
		ev.Allowed = dec.Allowed
		if !dec.Allowed {
			g.record(r.Context(), ev)
			ratelimit.Reject(w, dec)
			return
		}
		if g.limiter != nil {
			ratelimit.SetHeaders(w.Header(), dec)
		}

		// latência e o evento saem mesmo se o handler entrar em pânico
		defer func() {
			ev.Latency = g.clock.Now().Sub(start)
			g.record(r.Context(), ev)
		}()

		if !g.cacheEnabled || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ckey := cache.KeyFor(r.Method, r.URL.Path, r.URL.RawQuery)
		if e, ok := g.cache.Get(ckey, start); ok {
			ev.Cache = domain.CacheHit
			g.writeHit(w, e)
			return
		}

		leader := false
		res, _ := g.flight.Do(ckey, func() *captured {
			leader = true
			return g.fill(next, r, ckey)
		})
		if res.panicked {
			panic(res.panicVal)
		}

		switch {
		case res.stored && !leader:
			// outra requisição buscou e gravou; para esta é como um hit
			ev.Cache = domain.CacheHit
			res.writeTo(w, g.annotate(CacheHit))
		case res.stored:
			ev.Cache = domain.CacheMiss
			res.writeTo(w, g.annotate(CacheMiss))
		default:
			res.writeTo(w, nil)
		}
	})
}

// fill chama o handler interno e grava no cache quando a resposta permite.
func (g *Gate) fill(next http.Handler, r *http.Request, ckey string) (res *captured) {
	rec := newRecorder()
	defer func() {
		if p := recover(); p != nil {
			res = &captured{panicked: true, panicVal: p}
		}
	}()

	next.ServeHTTP(rec, r)

	res = &captured{
		status: rec.status,
		header: rec.header,
		body:   rec.body.Bytes(),
	}
	if cache.IsCacheable(r.Method, res.ok(), rec.header.Get("Cache-Control")) && json.Valid(res.body) {
		g.cache.Set(ckey, res.body, rec.header.Get("Content-Type"), g.clock.Now())
		res.stored = true
	}
	return res
}

func (g *Gate) annotate(status string) func(http.Header) {
	ttl := strconv.FormatInt(g.cache.TTL().Milliseconds(), 10)
	return func(h http.Header) {
		h.Set(HeaderCache, status)
		h.Set(HeaderCacheTTL, ttl)
	}
}

func (g *Gate) writeHit(w http.ResponseWriter, e cache.Entry) {
	ct := e.ContentType
	if ct == "" {
		ct = "application/json"
	}
	h := w.Header()
	h.Set("Content-Type", ct)
	g.annotate(CacheHit)(h)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Body)
}

func (g *Gate) record(ctx context.Context, ev domain.StatsEvent) {
	ratelimit.RecordStats(ctx, g.sink, ev, g.onStatsError)
}
