// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package program

import (
	"slices"

	"github.com/ezrec/lockstep/hw"
)

// Engine is one execution unit, bound to a hardware module.
type Engine struct {
	program *Program
	index   int
	name    string
	module  hw.Module

	registers []*Register
	events    []*Event
	actions   []*Action
	sequence  Sequence
}

// Program returns the owning program.
func (eng *Engine) Program() *Program { return eng.program }

// Index returns the engine's position in the program.
func (eng *Engine) Index() int { return eng.index }

// Name returns the engine name.
func (eng *Engine) Name() string { return eng.name }

// Module returns the hardware module the engine runs on.
func (eng *Engine) Module() hw.Module { return eng.module }

// ID returns the hardware engine identifier.
func (eng *Engine) ID() hw.EngineID { return eng.module.Engine() }

// Sequence returns the engine's instruction sequence.
func (eng *Engine) Sequence() *Sequence { return &eng.sequence }

// Registers returns the engine's registers in register file order.
func (eng *Engine) Registers() []*Register { return slices.Clone(eng.registers) }

// Events returns the engine's event bindings.
func (eng *Engine) Events() []*Event { return slices.Clone(eng.events) }

// Actions returns the engine's action bindings.
func (eng *Engine) Actions() []*Action { return slices.Clone(eng.actions) }

// AddRegister adds a register. The initial value is truncated to the width.
func (eng *Engine) AddRegister(name string, width Width, initial uint32) (reg *Register, err error) {
	if err = eng.program.mutable(eng.name, name); err != nil {
		return
	}
	if !width.Valid() {
		err = &ConfigurationError{Kind: KIND_WIDTH, Engine: eng.name, Name: name}
		return
	}
	if _, ok := eng.Register(name); ok {
		err = &ConfigurationError{Kind: KIND_DUPLICATE_NAME, Engine: eng.name, Name: name}
		return
	}

	reg = &Register{
		engine:  eng,
		name:    name,
		width:   width,
		initial: initial & width.Mask(),
		index:   len(eng.registers),
	}
	eng.registers = append(eng.registers, reg)

	return
}

// Register finds a register by name.
func (eng *Engine) Register(name string) (reg *Register, ok bool) {
	index := slices.IndexFunc(eng.registers, func(r *Register) bool { return r.name == name })
	if index < 0 {
		return
	}
	return eng.registers[index], true
}

// BindEvent names a hardware event for this engine.
func (eng *Engine) BindEvent(id hw.EventID, name string) (ev *Event, err error) {
	if err = eng.program.mutable(eng.name, name); err != nil {
		return
	}
	if _, ok := eng.Event(name); ok {
		err = &ConfigurationError{Kind: KIND_DUPLICATE_NAME, Engine: eng.name, Name: name}
		return
	}

	ev = &Event{engine: eng, name: name, id: id}
	eng.events = append(eng.events, ev)

	return
}

// Event finds an event binding by name.
func (eng *Engine) Event(name string) (ev *Event, ok bool) {
	index := slices.IndexFunc(eng.events, func(e *Event) bool { return e.name == name })
	if index < 0 {
		return
	}
	return eng.events[index], true
}

// BindAction names a hardware action for this engine.
func (eng *Engine) BindAction(id hw.ActionID, name string) (act *Action, err error) {
	if err = eng.program.mutable(eng.name, name); err != nil {
		return
	}
	if _, ok := eng.Action(name); ok {
		err = &ConfigurationError{Kind: KIND_DUPLICATE_NAME, Engine: eng.name, Name: name}
		return
	}

	act = &Action{engine: eng, name: name, id: id}
	eng.actions = append(eng.actions, act)

	return
}

// Action finds an action binding by name.
func (eng *Engine) Action(name string) (act *Action, ok bool) {
	index := slices.IndexFunc(eng.actions, func(a *Action) bool { return a.name == name })
	if index < 0 {
		return
	}
	return eng.actions[index], true
}
