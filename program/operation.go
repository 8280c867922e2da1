// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package program

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ezrec/lockstep/hw"
)

// owned is an entity scoped to one engine.
type owned interface {
	Engine() *Engine
	String() string
}

// Operation is the opcode specific part of an instruction.
type Operation interface {
	// Opcode of the operation.
	Opcode() Opcode
	// String renders the operands.
	String() string

	// operands lists the engine scoped entities the operation uses.
	operands() []owned
	// valid checks the operation is structurally complete.
	valid() bool
	// clone detaches the operation from caller owned slices.
	clone() Operation
}

// Source is where a RegisterRead samples from: a *Register of the same
// engine, or a SandboxRef.
type Source interface {
	String() string
	isSource()
}

// SandboxRef names a register block inside an engine's FPGA sandbox.
type SandboxRef struct {
	Sandbox  string
	Register string
}

func (ref SandboxRef) String() string {
	return ref.Sandbox + "/" + ref.Register
}

func (ref SandboxRef) isSource() {}

// Operand is a register or an immediate value.
type Operand struct {
	Reg *Register
	Imm uint32
}

// Reg makes a register operand.
func Reg(reg *Register) Operand {
	return Operand{Reg: reg}
}

// Imm makes an immediate operand.
func Imm(value uint32) Operand {
	return Operand{Imm: value}
}

func (op Operand) String() string {
	if op.Reg != nil {
		return op.Reg.name
	}
	return fmt.Sprintf("#%d", op.Imm)
}

func (op Operand) operands() []owned {
	if op.Reg != nil {
		return []owned{op.Reg}
	}
	return nil
}

// WaitEvent suspends the engine until Event satisfies Mode, or until
// TimeoutNs elapses, after which the engine proceeds. WAIT_FOREVER blocks.
type WaitEvent struct {
	Event     *Event
	Mode      EventMode
	TimeoutNs int64
}

func (op WaitEvent) Opcode() Opcode { return OP_WAIT_EVENT }

func (op WaitEvent) String() string {
	timeout := "forever"
	if op.TimeoutNs != WAIT_FOREVER {
		timeout = fmt.Sprintf("%dns", op.TimeoutNs)
	}
	return fmt.Sprintf("%v %v timeout=%v", op.Event.name, op.Mode, timeout)
}

func (op WaitEvent) operands() []owned { return []owned{op.Event} }
func (op WaitEvent) valid() bool       { return op.Event != nil && op.Mode.Valid() }
func (op WaitEvent) clone() Operation  { return op }

// RegisterRead samples Source into Dest when executed.
type RegisterRead struct {
	Dest   *Register
	Source Source
}

func (op RegisterRead) Opcode() Opcode { return OP_REGISTER_READ }

func (op RegisterRead) String() string {
	src := op.Source.String()
	if reg, ok := op.Source.(*Register); ok {
		src = reg.name
	}
	return fmt.Sprintf("%v <- %v", op.Dest.name, src)
}

func (op RegisterRead) operands() []owned {
	list := []owned{op.Dest}
	if reg, ok := op.Source.(*Register); ok {
		list = append(list, reg)
	}
	return list
}

func (op RegisterRead) valid() bool {
	if op.Dest == nil || op.Source == nil {
		return false
	}
	if reg, ok := op.Source.(*Register); ok && reg == nil {
		return false
	}
	return true
}

func (op RegisterRead) clone() Operation { return op }

// ExecuteAction pulses every listed action.
type ExecuteAction struct {
	Actions []*Action
}

func (op ExecuteAction) Opcode() Opcode { return OP_EXECUTE_ACTION }

func (op ExecuteAction) String() string {
	names := make([]string, len(op.Actions))
	for n, act := range op.Actions {
		names[n] = act.name
	}
	return strings.Join(names, " ")
}

func (op ExecuteAction) operands() []owned {
	list := make([]owned, len(op.Actions))
	for n, act := range op.Actions {
		list[n] = act
	}
	return list
}

func (op ExecuteAction) valid() bool {
	return len(op.Actions) > 0 && !slices.Contains(op.Actions, nil)
}

func (op ExecuteAction) clone() Operation {
	return ExecuteAction{Actions: slices.Clone(op.Actions)}
}

// Arithmetic computes Left Op Right into Result.
type Arithmetic struct {
	Op     AluOp
	Left   Operand
	Right  Operand
	Result *Register
}

func (op Arithmetic) Opcode() Opcode { return OP_ARITHMETIC }

func (op Arithmetic) String() string {
	return fmt.Sprintf("%v = %v %v %v", op.Result.name, op.Left, op.Op, op.Right)
}

func (op Arithmetic) operands() []owned {
	list := append(op.Left.operands(), op.Right.operands()...)
	return append(list, op.Result)
}

func (op Arithmetic) valid() bool      { return op.Result != nil && op.Op.Valid() }
func (op Arithmetic) clone() Operation { return op }

// Jump transfers to Target, a label of the same engine's sequence. A global
// jump is issued by every engine at the same logical point.
type Jump struct {
	Target string
	Global bool
}

func (op Jump) Opcode() Opcode { return OP_JUMP }

func (op Jump) String() string {
	if op.Global {
		return op.Target + " global"
	}
	return op.Target
}

func (op Jump) operands() []owned { return nil }
func (op Jump) valid() bool       { return len(op.Target) > 0 }
func (op Jump) clone() Operation  { return op }

// End halts the engine.
type End struct {
	Global bool
}

func (op End) Opcode() Opcode { return OP_END }

func (op End) String() string {
	if op.Global {
		return "global"
	}
	return ""
}

func (op End) operands() []owned { return nil }
func (op End) valid() bool       { return true }
func (op End) clone() Operation  { return op }

// QueueWaveform queues a waveform on a 1-based AWG channel.
type QueueWaveform struct {
	Channel  int
	Waveform Operand
	Queue    hw.Queue
}

func (op QueueWaveform) Opcode() Opcode { return OP_QUEUE_WAVEFORM }

func (op QueueWaveform) String() string {
	return fmt.Sprintf("ch%d waveform=%v trigger=%v delay=%d cycles=%d prescaler=%d",
		op.Channel, op.Waveform, op.Queue.Trigger, op.Queue.StartDelay, op.Queue.Cycles, op.Queue.Prescaler)
}

func (op QueueWaveform) operands() []owned { return op.Waveform.operands() }
func (op QueueWaveform) valid() bool       { return op.Channel > 0 }
func (op QueueWaveform) clone() Operation  { return op }

// Sync is an engine's occurrence of a junction.
type Sync struct {
	Junction *Junction
}

func (op Sync) Opcode() Opcode { return OP_SYNC }

func (op Sync) String() string {
	return op.Junction.name
}

func (op Sync) operands() []owned { return nil }
func (op Sync) valid() bool       { return op.Junction != nil }
func (op Sync) clone() Operation  { return op }
