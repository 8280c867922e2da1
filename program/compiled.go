package program

import (
	"iter"
	"slices"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/internal"
)

// Step is a linked instruction.
type Step struct {
	*Instruction
	Target   int // Resolved jump target, or -1.
	Junction int // Junction index of a Sync, or -1.
	Segment  int // Number of junctions before the step.
}

// CompiledEngine is an engine's linked sequence.
type CompiledEngine struct {
	Engine *Engine
	Steps  []Step

	labels map[string]int
}

// Resolve returns the step index of a label.
func (ce *CompiledEngine) Resolve(label string) (index int, ok bool) {
	index, ok = ce.labels[label]
	return
}

// Resources is the hardware a compiled program needs reserved. Each trigger
// line and each clock is reserved on every chassis.
type Resources struct {
	Chassis []int
	Lines   []hw.TriggerLine // Lines in use, barrier first.
	Barrier hw.TriggerLine
	Data    hw.TriggerLine // Share data line, valid when HasData.
	HasData bool
	Clocks  []float64
}

func (res *Resources) lines() iter.Seq[hw.Resource] {
	return func(yield func(hw.Resource) bool) {
		for _, chassis := range res.Chassis {
			for _, line := range res.Lines {
				if !yield(hw.LineResource(chassis, line)) {
					return
				}
			}
		}
	}
}

func (res *Resources) clocks() iter.Seq[hw.Resource] {
	return func(yield func(hw.Resource) bool) {
		for _, chassis := range res.Chassis {
			for _, hz := range res.Clocks {
				if !yield(hw.ClockResource(chassis, hz)) {
					return
				}
			}
		}
	}
}

// All iterates every resource to reserve, lines before clocks.
func (res *Resources) All() iter.Seq[hw.Resource] {
	return internal.IterSeqConcat(res.lines(), res.clocks())
}

// List returns All as a slice.
func (res *Resources) List() []hw.Resource {
	return slices.Collect(res.All())
}

// Compiled is a validated, linked program ready to load.
type Compiled struct {
	Program   *Program
	Engines   []*CompiledEngine
	Resources Resources
}

// Engine finds a compiled engine by name.
func (comp *Compiled) Engine(name string) (ce *CompiledEngine, ok bool) {
	index := slices.IndexFunc(comp.Engines, func(e *CompiledEngine) bool { return e.Engine.name == name })
	if index < 0 {
		return
	}
	return comp.Engines[index], true
}
