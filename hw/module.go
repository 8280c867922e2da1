// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package hw

import (
	"fmt"
	"strings"
)

// ModuleKind is the instrument class of a module.
type ModuleKind int

//go:generate go tool stringer -linecomment -type=ModuleKind
const (
	MODULE_AWG       = ModuleKind(0) // awg
	MODULE_DIGITIZER = ModuleKind(1) // digitizer
)

// ParseModuleKind accepts "awg", "dig" or "digitizer".
func ParseModuleKind(name string) (kind ModuleKind, err error) {
	switch strings.ToLower(name) {
	case "awg", "":
		kind = MODULE_AWG
	case "dig", "digitizer":
		kind = MODULE_DIGITIZER
	default:
		err = fmt.Errorf("%w: %q", ErrModuleKindInvalid, name)
	}
	return
}

// TriggerMode is how a queued waveform waits to start: immediately, or
// on an engine trigger action.
type TriggerMode int

//go:generate go tool stringer -linecomment -type=TriggerMode
const (
	TRIGGER_AUTO       = TriggerMode(0) // auto
	TRIGGER_SW_HVI     = TriggerMode(1) // sw_hvi
	TRIGGER_SW_HVI_ONE = TriggerMode(5) // sw_hvi_one
)

// triggerModeMap maps trigger mode names.
var triggerModeMap = map[string]TriggerMode{
	"auto":       TRIGGER_AUTO,
	"sw_hvi":     TRIGGER_SW_HVI,
	"sw_hvi_one": TRIGGER_SW_HVI_ONE,
}

// ParseTriggerMode accepts "auto", "sw_hvi" or "sw_hvi_one".
func ParseTriggerMode(name string) (mode TriggerMode, err error) {
	mode, ok := triggerModeMap[strings.ToLower(name)]
	if !ok {
		err = fmt.Errorf("%w: trigger mode %q", ErrSignalName, name)
	}
	return
}

// Queue holds the playback options of a queued waveform.
type Queue struct {
	Trigger    TriggerMode
	StartDelay int
	Cycles     int
	Prescaler  int
}

// Waveform is a waveform queued on, or played by, an AWG channel.
type Waveform struct {
	Channel int
	Number  uint32
	Queue
}

// Module is an opened instrument module with one execution engine.
type Module interface {
	// Name is the module's human readable name.
	Name() string
	// Kind is the instrument class.
	Kind() ModuleKind
	// Engine is the identifier of the module's execution engine.
	Engine() EngineID
	// Chassis is the chassis number the module sits in.
	Chassis() int
	// Slot is the chassis slot of the module.
	Slot() int
	// Channels is the number of output channels (AWG only).
	Channels() int
	// Sandbox returns a named FPGA sandbox.
	Sandbox(name string) (Sandbox, error)
	// Event returns the line observed for an event.
	Event(id EventID) *Line
	// Pulse drives an action for one engine clock.
	Pulse(id ActionID) error
	// QueueWaveform appends a waveform to a channel queue (AWG only).
	QueueWaveform(channel int, number uint32, queue Queue) error
	// Close the module.
	Close() error
}
