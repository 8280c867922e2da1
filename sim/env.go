package sim

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ezrec/lockstep/engine"
	"github.com/ezrec/lockstep/hw"
)

// env is a module environment that counts driven actions.
type env struct {
	engine.ModuleEnvironment
	pulses *prometheus.CounterVec
	name   string
}

func (e *env) Pulse(id hw.ActionID) (err error) {
	err = e.ModuleEnvironment.Pulse(id)
	if err == nil {
		e.pulses.WithLabelValues(e.name, id.String()).Inc()
	}
	return
}
