package ratelimit

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UnmatchedRoute agrupa requisições sem padrão de rota conhecido.
const UnmatchedRoute = "*"

// RouteFunc devolve o padrão da rota usado nas estatísticas.
type RouteFunc func(r *http.Request) string

// DefaultRoute usa o padrão resolvido pelo chi ("/api/aircraft/{tail}/summary"),
// depois r.Pattern do net/http, e por fim UnmatchedRoute. Nunca devolve o
// caminho concreto.
func DefaultRoute(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	// r.Pattern vem como "[MÉTODO ][HOST]/caminho"; o método já vai no evento
	if i := strings.IndexByte(r.Pattern, '/'); i >= 0 {
		return r.Pattern[i:]
	}
	return UnmatchedRoute
}
