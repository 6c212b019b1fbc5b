// Package shaping junta rate limit e cache de respostas num único middleware (Gate).
//
// Por requisição:
//
//  1. resolve a identidade do cliente
//  2. admite ou responde 429 com Retry-After e X-RateLimit-*
//  3. GET com cache ligado: hit devolve o corpo guardado com X-Cache: HIT
//  4. miss chama o handler interno; se a resposta é cacheável ela é guardada
//     e sai com X-Cache: MISS, senão sai como veio
//
// Cada requisição gera exatamente um domain.StatsEvent. Erro (pânico) do handler
// interno sobe sem retry e sem fallback para cache vencido.
package shaping
