package program

import (
	"github.com/ezrec/lockstep/hw"
)

// Event is a named alias, scoped to one engine, for an observed hardware signal.
type Event struct {
	engine *Engine
	name   string
	id     hw.EventID
}

func (ev *Event) Engine() *Engine { return ev.engine }
func (ev *Event) Name() string    { return ev.name }
func (ev *Event) ID() hw.EventID  { return ev.id }

// Action is a named alias, scoped to one engine, for a driven hardware signal.
type Action struct {
	engine *Engine
	name   string
	id     hw.ActionID
}

func (act *Action) Engine() *Engine { return act.engine }
func (act *Action) Name() string    { return act.name }
func (act *Action) ID() hw.ActionID { return act.id }

// String returns "engine.event".
func (ev *Event) String() string { return ev.engine.name + "." + ev.name }

// String returns "engine.action".
func (act *Action) String() string { return act.engine.name + "." + act.name }
