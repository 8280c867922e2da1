package program

import (
	"iter"
	"slices"

	"github.com/ezrec/lockstep/hw"
)

// LABEL_START implicitly labels the first instruction of every sequence.
const LABEL_START = "Start"

// Sequence is an engine's ordered instruction list. Labels are resolved by
// Compile, so jumps may refer forward.
type Sequence struct {
	engine       *Engine
	instructions []*Instruction
}

// Len returns the number of instructions.
func (seq *Sequence) Len() int {
	return len(seq.instructions)
}

// At returns the n'th instruction.
func (seq *Sequence) At(n int) *Instruction {
	return seq.instructions[n]
}

// All iterates the instructions in order.
func (seq *Sequence) All() iter.Seq2[int, *Instruction] {
	return slices.All(seq.instructions)
}

// Add appends an instruction with an optional label.
func (seq *Sequence) Add(label string, timeNs int64, op Operation) (in *Instruction, err error) {
	eng := seq.engine
	if err = eng.program.mutable(eng.name, label); err != nil {
		return
	}
	if op == nil || !op.valid() {
		err = &ConfigurationError{Kind: KIND_OPERATION, Engine: eng.name, Name: label}
		return
	}

	in = &Instruction{
		engine: eng,
		index:  len(seq.instructions),
		label:  label,
		timeNs: timeNs,
		op:     op.clone(),
	}
	seq.instructions = append(seq.instructions, in)

	return
}

// AddWaitEvent appends a WaitEvent.
func (seq *Sequence) AddWaitEvent(label string, timeNs int64, ev *Event, mode EventMode, timeoutNs int64) (*Instruction, error) {
	return seq.Add(label, timeNs, WaitEvent{Event: ev, Mode: mode, TimeoutNs: timeoutNs})
}

// AddRead appends a RegisterRead.
func (seq *Sequence) AddRead(label string, timeNs int64, dest *Register, source Source) (*Instruction, error) {
	return seq.Add(label, timeNs, RegisterRead{Dest: dest, Source: source})
}

// AddAction appends an ExecuteAction.
func (seq *Sequence) AddAction(label string, timeNs int64, actions ...*Action) (*Instruction, error) {
	return seq.Add(label, timeNs, ExecuteAction{Actions: actions})
}

// AddArithmetic appends an Arithmetic.
func (seq *Sequence) AddArithmetic(label string, timeNs int64, op AluOp, left, right Operand, result *Register) (*Instruction, error) {
	return seq.Add(label, timeNs, Arithmetic{Op: op, Left: left, Right: right, Result: result})
}

// AddJump appends a local Jump.
func (seq *Sequence) AddJump(label string, timeNs int64, target string) (*Instruction, error) {
	return seq.Add(label, timeNs, Jump{Target: target})
}

// AddEnd appends a local End.
func (seq *Sequence) AddEnd(label string, timeNs int64) (*Instruction, error) {
	return seq.Add(label, timeNs, End{})
}

// AddQueueWaveform appends a QueueWaveform.
func (seq *Sequence) AddQueueWaveform(label string, timeNs int64, channel int, waveform Operand, queue hw.Queue) (*Instruction, error) {
	return seq.Add(label, timeNs, QueueWaveform{Channel: channel, Waveform: waveform, Queue: queue})
}
