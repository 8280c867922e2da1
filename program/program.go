// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package program

import (
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/internal"
)

// Phase is the build state of a program.
type Phase int

//go:generate go tool stringer -linecomment -type=Phase
const (
	PHASE_BUILT    = Phase(0) // built
	PHASE_COMPILED = Phase(1) // compiled
)

// Program is a multi-engine build.
type Program struct {
	ID uuid.UUID // Identifies the program in logs.

	engines   []*Engine
	junctions []*Junction
	chassis   []int
	lines     []hw.TriggerLine
	clocks    []float64
	phase     Phase
}

// New creates an empty program.
func New() *Program {
	return &Program{ID: uuid.New()}
}

// Phase returns the build state.
func (prog *Program) Phase() Phase {
	return prog.phase
}

// mutable fails once the program is compiled.
func (prog *Program) mutable(engine, name string) error {
	if prog.phase != PHASE_BUILT {
		return &ConfigurationError{Kind: KIND_FROZEN, Engine: engine, Name: name}
	}
	return nil
}

// AddEngine adds the execution engine of a module.
func (prog *Program) AddEngine(module hw.Module, name string) (eng *Engine, err error) {
	if err = prog.mutable(name, name); err != nil {
		return
	}
	if module == nil {
		err = &ConfigurationError{Kind: KIND_MODULE, Engine: name, Name: name}
		return
	}
	for _, other := range prog.engines {
		if other.name == name || other.module.Engine() == module.Engine() {
			err = &ConfigurationError{Kind: KIND_DUPLICATE_NAME, Engine: name, Name: name}
			return
		}
	}

	eng = &Engine{
		program: prog,
		index:   len(prog.engines),
		name:    name,
		module:  module,
	}
	eng.sequence.engine = eng
	prog.engines = append(prog.engines, eng)

	return
}

// Engines returns the engines in declaration order.
func (prog *Program) Engines() []*Engine {
	return slices.Clone(prog.engines)
}

// Engine finds an engine by name.
func (prog *Program) Engine(name string) (eng *Engine, ok bool) {
	index := slices.IndexFunc(prog.engines, func(e *Engine) bool { return e.name == name })
	if index < 0 {
		return
	}
	return prog.engines[index], true
}

// Registers iterates every register of every engine.
func (prog *Program) Registers() iter.Seq[*Register] {
	return internal.IterFlatten(prog.engines, func(eng *Engine) []*Register { return eng.registers })
}

// Junctions returns the junctions in declaration order.
func (prog *Program) Junctions() []*Junction {
	return slices.Clone(prog.junctions)
}

// Junction finds a junction by name.
func (prog *Program) Junction(name string) (jn *Junction, ok bool) {
	index := slices.IndexFunc(prog.junctions, func(j *Junction) bool { return j.name == name })
	if index < 0 {
		return
	}
	return prog.junctions[index], true
}

// addGlobal appends the same labelled operation to every engine.
func (prog *Program) addGlobal(name string, timeNs int64, op Operation) (err error) {
	for _, eng := range prog.engines {
		_, err = eng.sequence.Add(name, timeNs, op)
		if err != nil {
			return
		}
	}
	return
}

// AddJunction inserts a rendezvous barrier, labelled with its name, at the
// current end of every engine's sequence.
func (prog *Program) AddJunction(name string, timeNs int64) (jn *Junction, err error) {
	if err = prog.mutable("", name); err != nil {
		return
	}
	if _, ok := prog.Junction(name); ok || len(name) == 0 {
		err = &ConfigurationError{Kind: KIND_DUPLICATE_NAME, Name: name}
		return
	}

	jn = &Junction{
		program: prog,
		index:   len(prog.junctions),
		name:    name,
		timeNs:  timeNs,
	}

	err = prog.addGlobal(name, timeNs, Sync{Junction: jn})
	if err != nil {
		jn = nil
		return
	}
	prog.junctions = append(prog.junctions, jn)

	return
}

// AddGlobalJump appends a jump to target on every engine.
func (prog *Program) AddGlobalJump(name string, timeNs int64, target string) error {
	return prog.addGlobal(name, timeNs, Jump{Target: target, Global: true})
}

// AddGlobalEnd appends an end on every engine.
func (prog *Program) AddGlobalEnd(name string, timeNs int64) error {
	return prog.addGlobal(name, timeNs, End{Global: true})
}

// AddChassis declares chassis of the platform.
func (prog *Program) AddChassis(chassis ...int) error {
	if err := prog.mutable("", "chassis"); err != nil {
		return err
	}
	prog.chassis = append(prog.chassis, chassis...)
	return nil
}

// SetSyncResources sets the trigger lines the program may reserve.
func (prog *Program) SetSyncResources(lines ...hw.TriggerLine) error {
	if err := prog.mutable("", "sync_resources"); err != nil {
		return err
	}
	prog.lines = slices.Clone(lines)
	return nil
}

// SetNonNativeClocks sets clock frequencies, in Hz, outside the engines' own.
func (prog *Program) SetNonNativeClocks(hz ...float64) error {
	if err := prog.mutable("", "non_native_clocks"); err != nil {
		return err
	}
	prog.clocks = slices.Clone(hz)
	return nil
}
