package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

const (
	DefaultKeyHeader = "X-API-Key"
	// UnknownClient é o endereço usado quando nenhum header de IP veio na requisição.
	UnknownClient = "unknown"

	apiPrefix = "api:"
	ipPrefix  = "ip:"
)

// DefaultClientIPHeaders é a ordem de confiança dos headers de IP:
// header do proxy confiável, depois X-Forwarded-For, depois X-Real-IP.
var DefaultClientIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

type KeyFunc func(r *http.Request) string

type IdentityOptions struct {
	// KeyHeader é o header dedicado da API key. Vazio usa DefaultKeyHeader.
	KeyHeader string
	// ClientIPHeaders em ordem de prioridade. Nil usa DefaultClientIPHeaders;
	// um slice vazio desliga a leitura de headers de proxy.
	ClientIPHeaders []string
	// UseRemoteAddr troca o fallback "unknown" pelo host de r.RemoteAddr.
	UseRemoteAddr bool
}

// ClientIdentity resolve a identidade com as opções padrão.
//
// Primeiro a API key ("api:<key>"), vinda do header dedicado ou de
// "Authorization: Bearer <key>"; senão o IP ("ip:<addr>") ou "ip:unknown".
func ClientIdentity(h http.Header) string {
	return identity(h, "", IdentityOptions{})
}

// APIKey extrai a credencial do header dedicado ou do Authorization bearer.
func APIKey(h http.Header, keyHeader string) string {
	if keyHeader == "" {
		keyHeader = DefaultKeyHeader
	}
	if v := strings.TrimSpace(h.Get(keyHeader)); v != "" {
		return v
	}
	auth := strings.TrimSpace(h.Get("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

func DefaultKeyFunc(opts IdentityOptions) KeyFunc {
	return func(r *http.Request) string {
		return identity(r.Header, r.RemoteAddr, opts)
	}
}

func identity(h http.Header, remoteAddr string, opts IdentityOptions) string {
	if key := APIKey(h, opts.KeyHeader); key != "" {
		return apiPrefix + key
	}

	headers := opts.ClientIPHeaders
	if headers == nil {
		headers = DefaultClientIPHeaders
	}
	for _, name := range headers {
		if ip := headerIP(h, name); ip != "" {
			return ipPrefix + ip
		}
	}

	if opts.UseRemoteAddr {
		host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
		if err == nil && host != "" {
			return ipPrefix + host
		}
		if remoteAddr != "" {
			return ipPrefix + remoteAddr
		}
	}
	return ipPrefix + UnknownClient
}

func headerIP(h http.Header, name string) string {
	v := strings.TrimSpace(h.Get(name))
	if v == "" {
		return ""
	}
	// pega o primeiro IP da lista (cliente original)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
