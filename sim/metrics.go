package sim

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the runtime counters of simulated engines.
type Metrics struct {
	Instructions *prometheus.CounterVec // by engine
	Timeouts     *prometheus.CounterVec // by engine
	Pulses       *prometheus.CounterVec // by engine, action
	Junctions    *prometheus.CounterVec // by junction
	Failures     *prometheus.CounterVec // by engine
}

// NewMetrics creates the counters and registers them. Counters already
// registered by another backend are shared. A nil registerer leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) (m *Metrics) {
	m = &Metrics{
		Instructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lockstep",
				Subsystem: "engine",
				Name:      "instructions_total",
				Help:      "Instructions completed by an engine",
			},
			[]string{"engine"},
		),
		Timeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lockstep",
				Subsystem: "engine",
				Name:      "wait_timeouts_total",
				Help:      "Event waits ended by their timeout",
			},
			[]string{"engine"},
		),
		Pulses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lockstep",
				Subsystem: "engine",
				Name:      "action_pulses_total",
				Help:      "Actions driven by an engine",
			},
			[]string{"engine", "action"},
		),
		Junctions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lockstep",
				Subsystem: "junction",
				Name:      "fired_total",
				Help:      "Junctions passed by every engine",
			},
			[]string{"junction"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lockstep",
				Subsystem: "engine",
				Name:      "failures_total",
				Help:      "Engines stopped by a runtime fault",
			},
			[]string{"engine"},
		),
	}

	if reg == nil {
		return
	}

	for _, vec := range []**prometheus.CounterVec{
		&m.Instructions, &m.Timeouts, &m.Pulses, &m.Junctions, &m.Failures,
	} {
		err := reg.Register(*vec)
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			*vec = already.ExistingCollector.(*prometheus.CounterVec)
		}
	}

	return
}
