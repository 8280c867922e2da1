package program

import (
	"fmt"
)

// Instruction is one step of an engine's sequence.
type Instruction struct {
	engine *Engine
	index  int
	label  string
	timeNs int64
	op     Operation
}

// Engine returns the engine whose sequence holds the instruction.
func (in *Instruction) Engine() *Engine { return in.engine }

// Index returns the position in the sequence.
func (in *Instruction) Index() int { return in.index }

// Label returns the optional label.
func (in *Instruction) Label() string { return in.label }

// TimeNs returns the minimum time the step occupies.
func (in *Instruction) TimeNs() int64 { return in.timeNs }

// Op returns the operation.
func (in *Instruction) Op() Operation { return in.op }

// Opcode returns the operation's opcode.
func (in *Instruction) Opcode() Opcode { return in.op.Opcode() }

func (in *Instruction) String() string {
	label := ""
	if len(in.label) > 0 {
		label = in.label + ": "
	}
	return fmt.Sprintf("%04d %v%v %v @%dns", in.index, label, in.op.Opcode(), in.op, in.timeNs)
}
