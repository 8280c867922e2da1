package hw

import (
	"fmt"
	"strconv"
	"strings"
)

// EngineID identifies the execution engine of one module.
type EngineID int

// EventID is a hardware signal observed by an engine.
type EventID int

// ActionID is a hardware signal driven by an engine.
type ActionID int

const (
	FPGA_USER_COUNT  = 8 // Number of FPGA user events and actions.
	AWG_TRIGGER_BASE = ActionID(FPGA_USER_COUNT)
	AWG_TRIGGER_MAX  = 4 // AWG channels with a trigger action.
)

// FpgaUserEvent returns the n'th FPGA user event.
func FpgaUserEvent(n int) EventID {
	return EventID(n)
}

// FpgaUserAction returns the n'th FPGA user action.
func FpgaUserAction(n int) ActionID {
	return ActionID(n)
}

// AwgTrigger returns the trigger action of a 1-based AWG channel.
func AwgTrigger(channel int) ActionID {
	return AWG_TRIGGER_BASE + ActionID(channel-1)
}

// AwgChannel returns the 1-based AWG channel of a trigger action.
func (id ActionID) AwgChannel() (channel int, ok bool) {
	if id < AWG_TRIGGER_BASE || id >= AWG_TRIGGER_BASE+AWG_TRIGGER_MAX {
		return
	}
	return int(id-AWG_TRIGGER_BASE) + 1, true
}

func (id EventID) String() string {
	return fmt.Sprintf("fpga_user_%d", int(id))
}

func (id ActionID) String() string {
	if channel, ok := id.AwgChannel(); ok {
		return fmt.Sprintf("awg_trigger_%d", channel)
	}
	return fmt.Sprintf("fpga_user_%d", int(id))
}

// signalIndex parses the numeric suffix of a named signal.
func signalIndex(name, prefix string, limit int) (n int, err error) {
	suffix, ok := strings.CutPrefix(strings.ToLower(name), prefix)
	if !ok {
		err = ErrSignalName
		return
	}
	n, err = strconv.Atoi(suffix)
	if err != nil || n < 0 || n >= limit {
		err = ErrSignalName
	}
	return
}

// ParseEvent parses an event name such as "fpga_user_4".
func ParseEvent(name string) (id EventID, err error) {
	n, err := signalIndex(name, "fpga_user_", FPGA_USER_COUNT)
	if err != nil {
		return
	}
	id = FpgaUserEvent(n)
	return
}

// ParseAction parses an action name such as "fpga_user_7" or "awg_trigger_1".
func ParseAction(name string) (id ActionID, err error) {
	n, err := signalIndex(name, "awg_trigger_", AWG_TRIGGER_MAX+1)
	if err == nil {
		if n == 0 {
			err = ErrSignalName
			return
		}
		id = AwgTrigger(n)
		return
	}

	n, err = signalIndex(name, "fpga_user_", FPGA_USER_COUNT)
	if err != nil {
		return
	}
	id = FpgaUserAction(n)
	return
}
