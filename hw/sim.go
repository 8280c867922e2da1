// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package hw

import (
	"fmt"
	"sync"
)

// SANDBOX_DEFAULT is the name of a digitizer's FPGA sandbox.
const SANDBOX_DEFAULT = "sandbox0"

// ModuleDescriptor describes a module to open.
type ModuleDescriptor struct {
	Name     string
	Kind     ModuleKind
	Chassis  int
	Slot     int
	Channels int
}

// Engine derives the engine identifier from the chassis position.
func (desc ModuleDescriptor) Engine() EngineID {
	return EngineID(desc.Chassis<<8 | desc.Slot)
}

// SimModule is an in-process instrument module.
type SimModule struct {
	desc ModuleDescriptor

	events    [FPGA_USER_COUNT]Line
	sandboxes map[string]*SimSandbox

	mutex  sync.Mutex
	closed bool
	pulses map[ActionID]uint64
	queued [][]Waveform
	played []Waveform
}

var _ Module = (*SimModule)(nil)

// NewSimModule opens a simulated module. Digitizers get an unloaded
// sandbox named SANDBOX_DEFAULT.
func NewSimModule(desc ModuleDescriptor) (mod *SimModule) {
	if desc.Kind != MODULE_AWG {
		desc.Channels = 0
	}
	if len(desc.Name) == 0 {
		desc.Name = fmt.Sprintf("%v-%d-%d", desc.Kind, desc.Chassis, desc.Slot)
	}

	mod = &SimModule{
		desc:      desc,
		sandboxes: map[string]*SimSandbox{},
		pulses:    map[ActionID]uint64{},
		queued:    make([][]Waveform, desc.Channels),
	}

	if desc.Kind == MODULE_DIGITIZER {
		mod.AddSandbox(SANDBOX_DEFAULT)
	}

	return
}

// OpenSim opens one simulated module per descriptor.
func OpenSim(descs []ModuleDescriptor) (mods []*SimModule) {
	for _, desc := range descs {
		mods = append(mods, NewSimModule(desc))
	}
	return
}

// AddSandbox adds an unloaded sandbox to the module.
func (mod *SimModule) AddSandbox(name string) (sb *SimSandbox) {
	sb = &SimSandbox{name: name, module: mod}
	mod.sandboxes[name] = sb
	return
}

func (mod *SimModule) Name() string     { return mod.desc.Name }
func (mod *SimModule) Kind() ModuleKind { return mod.desc.Kind }
func (mod *SimModule) Engine() EngineID { return mod.desc.Engine() }
func (mod *SimModule) Chassis() int     { return mod.desc.Chassis }
func (mod *SimModule) Slot() int        { return mod.desc.Slot }
func (mod *SimModule) Channels() int    { return mod.desc.Channels }

// Sandbox returns a named FPGA sandbox.
func (mod *SimModule) Sandbox(name string) (sb Sandbox, err error) {
	sim, ok := mod.sandboxes[name]
	if !ok {
		err = fmt.Errorf("%w: %v/%q", ErrSandboxMissing, mod.desc.Name, name)
		return
	}
	sb = sim
	return
}

// SimSandbox returns a named sandbox with its simulation methods.
func (mod *SimModule) SimSandbox(name string) (sb *SimSandbox, ok bool) {
	sb, ok = mod.sandboxes[name]
	return
}

// Event returns the line observed for an event.
func (mod *SimModule) Event(id EventID) *Line {
	index := int(id)
	if index < 0 || index >= len(mod.events) {
		return nil
	}
	return &mod.events[index]
}

// Pulse drives an action. AWG trigger actions start the head of the
// channel's queue.
func (mod *SimModule) Pulse(id ActionID) (err error) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	if mod.closed {
		err = ErrModuleClosed
		return
	}

	mod.pulses[id]++

	channel, ok := id.AwgChannel()
	if !ok || mod.desc.Kind != MODULE_AWG || channel > mod.desc.Channels {
		return
	}

	queue := mod.queued[channel-1]
	if len(queue) == 0 {
		return
	}
	mod.played = append(mod.played, queue[0])
	mod.queued[channel-1] = queue[1:]

	return
}

// Pulses returns how often an action was driven.
func (mod *SimModule) Pulses(id ActionID) uint64 {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	return mod.pulses[id]
}

// QueueWaveform appends a waveform to a channel queue.
func (mod *SimModule) QueueWaveform(channel int, number uint32, queue Queue) (err error) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	if mod.closed {
		err = ErrModuleClosed
		return
	}
	if mod.desc.Kind != MODULE_AWG {
		err = ErrModuleKind
		return
	}
	if channel < 1 || channel > mod.desc.Channels {
		err = ErrChannelInvalid
		return
	}

	wave := Waveform{Channel: channel, Number: number, Queue: queue}
	if queue.Trigger == TRIGGER_AUTO {
		mod.played = append(mod.played, wave)
		return
	}

	mod.queued[channel-1] = append(mod.queued[channel-1], wave)
	return
}

// Queued returns the waveforms waiting on a channel.
func (mod *SimModule) Queued(channel int) []Waveform {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	if channel < 1 || channel > len(mod.queued) {
		return nil
	}
	return append([]Waveform(nil), mod.queued[channel-1]...)
}

// Played returns every waveform started, in order.
func (mod *SimModule) Played() []Waveform {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	return append([]Waveform(nil), mod.played...)
}

// Reset clears queues, counters and event lines; sandboxes keep their
// firmware.
func (mod *SimModule) Reset() {
	mod.mutex.Lock()
	clear(mod.pulses)
	for n := range mod.queued {
		mod.queued[n] = nil
	}
	mod.played = nil
	mod.mutex.Unlock()

	for n := range mod.events {
		mod.events[n].Reset()
	}
}

// Close the module.
func (mod *SimModule) Close() (err error) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	mod.closed = true
	return
}
