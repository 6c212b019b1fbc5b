package api

import (
	"crypto/subtle"
	"net/http"

	"aircraft-gateway/middleware/ratelimit"
)

func keyHeader(h string) string {
	if h == "" {
		return ratelimit.DefaultKeyHeader
	}
	return h
}

// RequireAPIKey aceita a chave no header dedicado ou em "Authorization: Bearer".
// Chave ausente ou diferente: 401 {"error":"Unauthorized"}.
func RequireAPIKey(secret, header string) func(http.Handler) http.Handler {
	want := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := ratelimit.APIKey(r.Header, header)
			if got == "" || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
