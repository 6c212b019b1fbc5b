package domain

import "time"

// Clock fornece o "agora" usado nas contas de janela e expiração.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta uma função simples para Clock (útil em testes).
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock usa time.Now.
var SystemClock Clock = ClockFunc(time.Now)
