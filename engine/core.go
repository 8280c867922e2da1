// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

// Status is the result of a Tick.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_NEXT     = Status(0) // next
	STATUS_WAIT     = Status(1) // wait
	STATUS_JUNCTION = Status(2) // junction
	STATUS_HALTED   = Status(3) // halted
)

// Core is the simulation context of one engine.
type Core struct {
	Verbose bool        // Set to enable per-instruction trace logging.
	Logger  *zap.Logger // Trace logger; nil disables logging.

	Engine    *program.CompiledEngine
	Registers *RegisterFile
	Env       Environment

	Ip       int   // Current step index.
	Clock    int64 // Engine time consumed, in ns.
	Ticks    int   // Instructions completed.
	Jumps    int   // Jumps taken.
	Timeouts int   // Waits ended by timeout.

	status   Status
	baseline map[hw.EventID]hw.LineState
}

// NewCore creates an engine core with a fresh register file.
func NewCore(ce *program.CompiledEngine, env Environment) (core *Core) {
	core = &Core{
		Engine:    ce,
		Registers: NewRegisterFile(ce.Engine.Registers()),
		Env:       env,
		baseline:  map[hw.EventID]hw.LineState{},
	}
	return
}

// Name returns the engine name.
func (core *Core) Name() string {
	return core.Engine.Engine.Name()
}

// Status returns the status of the last Tick.
func (core *Core) Status() Status {
	return core.status
}

// Step returns the step at the instruction pointer.
func (core *Core) Step() (step program.Step, ok bool) {
	if core.Ip < 0 || core.Ip >= len(core.Engine.Steps) {
		return
	}
	return core.Engine.Steps[core.Ip], true
}

func (core *Core) trace(msg string, fields ...zap.Field) {
	if !core.Verbose || core.Logger == nil {
		return
	}
	fields = append([]zap.Field{zap.String("engine", core.Name()), zap.Int("ip", core.Ip)}, fields...)
	core.Logger.Debug(msg, fields...)
}

// Reset the core to the start of its sequence. Registers are reloaded
// with their initial values, and every bound event's edge counters are
// latched so only later edges satisfy a wait.
func (core *Core) Reset() (err error) {
	core.trace("reset")

	core.Ip = 0
	core.Clock = 0
	core.Ticks = 0
	core.Jumps = 0
	core.Timeouts = 0
	core.status = STATUS_NEXT
	core.Registers.Reset()

	clear(core.baseline)
	for _, ev := range core.Engine.Engine.Events() {
		var state hw.LineState
		state, err = core.Env.Event(ev.ID())
		if err != nil {
			return
		}
		core.baseline[ev.ID()] = state
	}

	return
}

// advance completes the current step.
func (core *Core) advance(step program.Step, next int) {
	core.Clock += step.TimeNs()
	core.Ticks++
	core.Ip = next
	core.status = STATUS_NEXT
}

// Tick executes the step at the instruction pointer.
//
// STATUS_WAIT means a WaitEvent is not yet satisfied; Tick again once the
// event line changes, or Expire when its timeout elapses. STATUS_JUNCTION
// means the engine arrived at a junction; Pass once the barrier fires.
func (core *Core) Tick() (status Status, err error) {
	if core.status == STATUS_HALTED {
		status = STATUS_HALTED
		return
	}

	step, ok := core.Step()
	if !ok {
		// Running off the end halts the engine.
		core.status = STATUS_HALTED
		status = core.status
		return
	}

	defer func() {
		if err != nil {
			err = &ErrStep{Engine: core.Name(), Index: step.Index(), Opcode: step.Opcode().String(), Err: err}
		}
	}()

	core.trace("tick", zap.Stringer("step", step.Instruction))

	next := core.Ip + 1

	switch op := step.Op().(type) {
	case program.WaitEvent:
		var ready bool
		ready, err = core.ready(op)
		if err != nil {
			return
		}
		if !ready {
			core.status = STATUS_WAIT
			status = core.status
			return
		}
	case program.RegisterRead:
		var value uint32
		value, err = core.source(op.Source)
		if err != nil {
			return
		}
		err = core.Registers.Write(op.Dest.Index(), value)
		if err != nil {
			return
		}
	case program.ExecuteAction:
		var errs []error
		for _, act := range op.Actions {
			errs = append(errs, core.Env.Pulse(act.ID()))
		}
		err = errors.Join(errs...)
		if err != nil {
			return
		}
	case program.Arithmetic:
		var left, right uint32
		left, err = core.operand(op.Left)
		if err != nil {
			return
		}
		right, err = core.operand(op.Right)
		if err != nil {
			return
		}
		err = core.Registers.Write(op.Result.Index(), op.Op.Apply(left, right))
		if err != nil {
			return
		}
	case program.Jump:
		next = step.Target
		core.Jumps++
	case program.End:
		core.advance(step, core.Ip)
		core.status = STATUS_HALTED
		status = core.status
		return
	case program.QueueWaveform:
		var number uint32
		number, err = core.operand(op.Waveform)
		if err != nil {
			return
		}
		err = core.Env.QueueWaveform(op.Channel, number, op.Queue)
		if err != nil {
			return
		}
	case program.Sync:
		core.status = STATUS_JUNCTION
		status = core.status
		return
	default:
		err = ErrOperationUnset
		return
	}

	core.advance(step, next)
	status = core.status
	return
}

// ready checks a wait condition, consuming the edges it observed.
func (core *Core) ready(op program.WaitEvent) (ready bool, err error) {
	id := op.Event.ID()
	state, err := core.Env.Event(id)
	if err != nil {
		return
	}

	seen := core.baseline[id]
	switch op.Mode {
	case program.EVENT_ACTIVE:
		ready = state.Level
	case program.EVENT_INACTIVE:
		ready = !state.Level
	case program.EVENT_TO_ACTIVE:
		ready = state.Rises > seen.Rises
	case program.EVENT_TO_INACTIVE:
		ready = state.Falls > seen.Falls
	}

	if ready {
		core.baseline[id] = state
	}
	return
}

func (core *Core) source(src program.Source) (value uint32, err error) {
	switch src := src.(type) {
	case *program.Register:
		value, err = core.Registers.Read(src.Index())
	case program.SandboxRef:
		value, err = core.Env.ReadSandbox(src)
	default:
		err = ErrSourceInvalid
	}
	return
}

func (core *Core) operand(op program.Operand) (value uint32, err error) {
	if op.Reg == nil {
		value = op.Imm
		return
	}
	return core.Registers.Read(op.Reg.Index())
}

// Waiting returns the wait the core is blocked on.
func (core *Core) Waiting() (wait program.WaitEvent, ok bool) {
	if core.status != STATUS_WAIT {
		return
	}
	step, _ := core.Step()
	wait, ok = step.Op().(program.WaitEvent)
	return
}

// Expire ends a blocked wait by timeout; the engine proceeds to the next
// step. Waits with WAIT_FOREVER never expire.
func (core *Core) Expire() (err error) {
	wait, ok := core.Waiting()
	if !ok || wait.TimeoutNs == program.WAIT_FOREVER {
		err = ErrNotWaiting
		return
	}

	step, _ := core.Step()
	core.trace("timeout", zap.Int64("timeout_ns", wait.TimeoutNs))
	core.Clock += wait.TimeoutNs
	core.Timeouts++
	core.advance(step, core.Ip+1)

	return
}

// Junction returns the junction index the core is held at.
func (core *Core) Junction() (index int, ok bool) {
	if core.status != STATUS_JUNCTION {
		index = -1
		return
	}
	step, _ := core.Step()
	return step.Junction, true
}

// Pass releases the core from its junction.
func (core *Core) Pass() (err error) {
	if core.status != STATUS_JUNCTION {
		err = ErrNotAtJunction
		return
	}

	step, _ := core.Step()
	core.trace("pass", zap.Int("junction", step.Junction))
	core.advance(step, core.Ip+1)

	return
}

// Run ticks the core until it blocks, halts or fails, or until limit
// instructions completed. A limit of zero is unlimited.
func (core *Core) Run(limit int) (status Status, err error) {
	for n := 0; limit == 0 || n < limit; n++ {
		status, err = core.Tick()
		if err != nil || status != STATUS_NEXT {
			return
		}
	}
	return
}
