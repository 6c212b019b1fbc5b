// Package cache guarda respostas JSON de GETs bem sucedidos por um tempo limitado.
//
// A chave é "METHOD:path:query" (KeyFor). Só entra no cache o que passa em
// IsCacheable. O Store tem TTL por entrada, expiração preguiçosa e capacidade
// máxima com despejo da entrada que vence primeiro. Coalescer evita que misses
// simultâneos da mesma chave chamem o upstream mais de uma vez.
package cache
