package engine

import (
	"fmt"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

// Environment is the hardware an engine observes and drives.
type Environment interface {
	// Event samples an event line.
	Event(id hw.EventID) (hw.LineState, error)
	// Pulse drives an action.
	Pulse(id hw.ActionID) error
	// ReadSandbox reads the first word of a sandbox register.
	ReadSandbox(ref program.SandboxRef) (uint32, error)
	// QueueWaveform queues a waveform on an output channel.
	QueueWaveform(channel int, number uint32, queue hw.Queue) error
}

// peeker reads a sandbox register the way the engine does, ignoring the
// host access type.
type peeker interface {
	Peek(name string) (uint32, error)
}

// ModuleEnvironment drives a hardware module.
type ModuleEnvironment struct {
	Module hw.Module
}

var _ Environment = (*ModuleEnvironment)(nil)

func (env *ModuleEnvironment) Event(id hw.EventID) (state hw.LineState, err error) {
	line := env.Module.Event(id)
	if line == nil {
		err = fmt.Errorf("%w: %v", ErrEventMissing, id)
		return
	}
	state = line.State()
	return
}

func (env *ModuleEnvironment) Pulse(id hw.ActionID) error {
	return env.Module.Pulse(id)
}

func (env *ModuleEnvironment) ReadSandbox(ref program.SandboxRef) (value uint32, err error) {
	sb, err := env.Module.Sandbox(ref.Sandbox)
	if err != nil {
		return
	}
	if peek, ok := sb.(peeker); ok {
		return peek.Peek(ref.Register)
	}
	return sb.Read(ref.Register)
}

func (env *ModuleEnvironment) QueueWaveform(channel int, number uint32, queue hw.Queue) error {
	return env.Module.QueueWaveform(channel, number, queue)
}
