package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// Window é o contador de uma janela fixa para um cliente.
//
// Enquanto a janela não expirou, Count nunca passa do teto configurado.
// Quando now >= ResetAt a janela é considerada expirada e deve ser substituída,
// nunca incrementada.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Expired informa se a janela já fechou no instante now.
func (w Window) Expired(now time.Time) bool {
	return !now.Before(w.ResetAt)
}

// WindowStore guarda as janelas por chave (ex: "api:<key>", "ip:<addr>").
//
// Todas as operações são totais: não falham e não bloqueiam.
type WindowStore interface {
	Admit(key Key, now time.Time) bool
	Remaining(key Key, now time.Time) int
	RetryAfterSeconds(key Key, now time.Time) int
	ResetEpochSeconds(key Key, now time.Time) int64
	Limit() int
}

type Decision struct {
	Allowed bool
	// Limit é o teto de requisições por janela.
	Limit int
	// Remaining é a cota que sobra na janela corrente (0 quando bloqueado).
	Remaining int
	// ResetAt é o fim da janela em epoch seconds.
	ResetAt int64
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
