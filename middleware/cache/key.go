package cache

import (
	"net/http"
	"strings"
)

// KeyFor monta a chave "METHOD:path:query".
//
// O ':' do path é escapado (assim como '%'), então os dois primeiros ':' da chave
// sempre são os separadores e triplas diferentes nunca colidem.
func KeyFor(method, path, query string) string {
	return method + ":" + escapeColon(path) + ":" + query
}

func escapeColon(p string) string {
	if !strings.ContainsAny(p, ":%") {
		return p
	}
	p = strings.ReplaceAll(p, "%", "%25")
	return strings.ReplaceAll(p, ":", "%3A")
}

// IsCacheable: só GET, só resposta de sucesso e sem no-cache/no-store.
func IsCacheable(method string, ok bool, cacheControl string) bool {
	if method != http.MethodGet || !ok {
		return false
	}
	for _, d := range strings.Split(cacheControl, ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if i := strings.IndexByte(d, '='); i >= 0 {
			d = strings.TrimSpace(d[:i])
		}
		if d == "no-cache" || d == "no-store" {
			return false
		}
	}
	return true
}
