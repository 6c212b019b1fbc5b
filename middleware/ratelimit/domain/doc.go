// Package domain define contratos e tipos de domínio para rate limit, concorrência
// e estatísticas do gate.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
