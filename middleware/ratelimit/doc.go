// Package ratelimit fornece adapters HTTP (net/http) para rate limit de janela fixa
// e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa, semáforo, sinks de estatística)
//   - ratelimit (este pacote): identidade do cliente + middlewares HTTP + tradução para status/headers
//
// Fluxo:
//
//   1) Resolve a identidade do cliente ("api:<key>" ou "ip:<addr>")
//   2) Chama a camada application para obter a decisão
//   3) Se bloqueado, responde 429 (rate limit) ou 503 (concorrência)
//   4) Se permitido, chama o próximo handler
//
// O gate completo (rate limit + cache de respostas) fica em middleware/shaping e
// reaproveita SetHeaders, Reject e DefaultKeyFunc daqui.
package ratelimit
