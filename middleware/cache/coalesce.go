package cache

import "golang.org/x/sync/singleflight"

// Coalescer junta misses concorrentes da mesma chave numa única execução de fn.
// Quem chega enquanto fn roda recebe o mesmo resultado; shared=true indica
// que o resultado foi entregue a mais de um chamador (inclusive a quem rodou fn).
//
// Desligado (zero value com Enabled=false), cada chamada roda fn sozinha.
type Coalescer[T any] struct {
	Enabled bool
	group   singleflight.Group
}

func NewCoalescer[T any](enabled bool) *Coalescer[T] {
	return &Coalescer[T]{Enabled: enabled}
}

// Do roda fn para key, ou espera a execução que já está em voo.
// fn não deve entrar em pânico: o Gate recupera dentro de fn e repassa o valor.
func (c *Coalescer[T]) Do(key string, fn func() T) (v T, shared bool) {
	if c == nil || !c.Enabled {
		return fn(), false
	}
	res, _, shared := c.group.Do(key, func() (any, error) {
		return fn(), nil
	})
	return res.(T), shared
}
