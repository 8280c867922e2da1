package fsm

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/session"
)

// Writer is a register the host writes.
type Writer interface {
	Write(value uint32) error
}

// Pulse emulates an edge on a signal driven by a register, by writing a
// one and then a zero.
func Pulse(w Writer) (err error) {
	err = w.Write(1)
	if err != nil {
		return
	}
	return w.Write(0)
}

// sandboxRegister is a writable sandbox register.
type sandboxRegister struct {
	sb   hw.Sandbox
	name string
}

func (reg *sandboxRegister) Write(value uint32) error {
	return reg.sb.Write(reg.name, value)
}

// Console is the host side of a running loop. It is not safe for
// concurrent use.
type Console struct {
	log  *zap.Logger
	loop *Loop

	event   Writer
	data    Writer
	cycles  *session.HostRegister
	counter *session.HostRegister
	quit    *session.HostRegister

	memMapValue uint32
	presses     int
	done        bool
}

// NewConsole attaches to the loop's registers in a loaded session.
func NewConsole(s *session.Session, loop *Loop, log *zap.Logger) (con *Console, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	top := loop.Topology
	master := loop.Master.Name()

	sb, err := s.Sandbox(master, top.Sandbox)
	if err != nil {
		return
	}

	out := &Console{
		log:         log,
		loop:        loop,
		event:       &sandboxRegister{sb: sb, name: top.EventRegister},
		data:        &sandboxRegister{sb: sb, name: top.DataRegister},
		memMapValue: loop.Counter.Initial(),
	}

	for _, item := range []struct {
		reg  **session.HostRegister
		name string
	}{
		{&out.cycles, top.CycleCount},
		{&out.counter, top.Counter},
		{&out.quit, top.Quit},
	} {
		*item.reg, err = s.Register(master, item.name)
		if err != nil {
			return
		}
	}

	con = out
	return
}

// Pulse raises the data ready event once.
func (con *Console) Pulse() error {
	return Pulse(con.event)
}

// WriteData writes the waveform number the master reads next.
func (con *Console) WriteData(value uint32) error {
	return con.data.Write(value)
}

// Advance counts a press: the host counter register is incremented and
// the data ready event is pulsed.
func (con *Console) Advance() (err error) {
	if con.done {
		err = ErrConsoleClosed
		return
	}

	con.presses++
	con.memMapValue++

	err = con.counter.Write(con.memMapValue)
	if err != nil {
		return
	}

	err = con.Pulse()
	if err != nil {
		return
	}

	con.log.Debug("advance", zap.Int("presses", con.presses), zap.Uint32("counter", con.memMapValue))
	return
}

// Presses returns how often Advance succeeded.
func (con *Console) Presses() int {
	return con.presses
}

// Counter reads the host counter register.
func (con *Console) Counter() (uint32, error) {
	return con.counter.Read()
}

// Cycles reads the master's cycle count.
func (con *Console) Cycles() (uint32, error) {
	return con.cycles.Read()
}

// Quit raises the quit flag register. No instruction of the loop tests
// the flag, so the engines keep running until the session is released.
func (con *Console) Quit() (err error) {
	err = con.quit.Write(1)
	if err != nil {
		return
	}

	con.done = true
	con.log.Info("quit", zap.Int("presses", con.presses))
	return
}

// Status returns the iteration line shown to the operator.
func (con *Console) Status() (line string, err error) {
	cycles, err := con.Cycles()
	if err != nil {
		return
	}
	line = f("N. of iterations = %d", cycles)
	return
}

// Execute runs one console command:
//
//	""          advance (count a press and pulse)
//	"q"         quit
//	"pulse"     pulse the data ready event
//	"data N"    write the waveform number
//	"status"    no-op; the caller prints Status
func (con *Console) Execute(command string) (quit bool, err error) {
	words := strings.Fields(command)
	if len(words) == 0 {
		err = con.Advance()
		return
	}

	switch strings.ToLower(words[0]) {
	case "q", "quit":
		err = con.Quit()
		quit = err == nil
	case "n", "next":
		err = con.Advance()
	case "pulse":
		err = con.Pulse()
	case "data":
		if len(words) != 2 {
			err = fmt.Errorf("%w: %q", ErrCommand, command)
			return
		}
		var value uint64
		value, err = strconv.ParseUint(words[1], 0, 32)
		if err != nil {
			return
		}
		err = con.WriteData(uint32(value))
	case "status":
	default:
		err = fmt.Errorf("%w: %q", ErrCommand, command)
	}

	return
}
