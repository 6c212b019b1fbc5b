// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: contador de janela fixa por chave, em memória, com janitor
//   - MemoryStatsStore: acumuladores do processo (total, bloqueados, latência, cache)
//   - RedisStatsStore: sink de estatísticas em Redis (go-redis)
//   - ChanPool: semáforo simples para limite de concorrência
package infra
