// Package supervisor monta a árvore suture do gateway: servidor HTTP,
// janitor das janelas e do cache, e os serviços de ETL.
package supervisor

import (
	"time"

	"aircraft-gateway/internal/logging"

	"github.com/thejerf/suture/v4"
)

type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// NewTree cria o supervisor raiz com eventos logados via zerolog.
func NewTree(name string, cfg TreeConfig) *suture.Supervisor {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = 30
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = 15 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return suture.New(name, suture.Spec{
		EventHook:        logEvent,
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})
}

func logEvent(ev suture.Event) {
	e := logging.Warn()
	if ev.Type() == suture.EventTypeResume {
		e = logging.Info()
	}
	e.Fields(ev.Map()).Msg(ev.String())
}
