package program

import (
	"fmt"
)

// CLOCK_PERIOD_NS is the engine clock period. Time budgets are multiples of it.
const CLOCK_PERIOD_NS = 10

// WAIT_FOREVER as a wait timeout blocks the engine until the event occurs.
const WAIT_FOREVER = int64(-1)

// Opcode is the kind of an instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_WAIT_EVENT     = Opcode(0) // wait
	OP_REGISTER_READ  = Opcode(1) // read
	OP_EXECUTE_ACTION = Opcode(2) // action
	OP_ARITHMETIC     = Opcode(3) // alu
	OP_JUMP           = Opcode(4) // jump
	OP_END            = Opcode(5) // end
	OP_QUEUE_WAVEFORM = Opcode(6) // queue
	OP_SYNC           = Opcode(7) // junction
)

// opcodeFloorNs is the hardware execution cost floor of each opcode.
var opcodeFloorNs = [...]int64{
	OP_WAIT_EVENT:     10,
	OP_REGISTER_READ:  20,
	OP_EXECUTE_ACTION: 10,
	OP_ARITHMETIC:     10,
	OP_JUMP:           10,
	OP_END:            10,
	OP_QUEUE_WAVEFORM: 10,
	OP_SYNC:           10,
}

// MinTimeNs returns the smallest time budget the opcode may be given.
func (op Opcode) MinTimeNs() int64 {
	if op < 0 || int(op) >= len(opcodeFloorNs) {
		return CLOCK_PERIOD_NS
	}
	return opcodeFloorNs[op]
}

// AluOp is an arithmetic operation.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_ADD = AluOp(0) // add
	ALU_SUB = AluOp(1) // sub
	ALU_AND = AluOp(2) // and
	ALU_OR  = AluOp(3) // or
	ALU_XOR = AluOp(4) // xor
	ALU_SHL = AluOp(5) // shl
	ALU_SHR = AluOp(6) // shr
)

// aluMap maps ALU operation names.
var aluMap = map[string]AluOp{
	"add": ALU_ADD,
	"sub": ALU_SUB,
	"and": ALU_AND,
	"or":  ALU_OR,
	"xor": ALU_XOR,
	"shl": ALU_SHL,
	"shr": ALU_SHR,
}

// Valid is true for the defined operations.
func (op AluOp) Valid() bool {
	return op >= ALU_ADD && op <= ALU_SHR
}

// ParseAluOp accepts the operation names.
func ParseAluOp(name string) (op AluOp, err error) {
	op, ok := aluMap[name]
	if !ok {
		err = fmt.Errorf("%w: alu %q", ErrOperationInvalid, name)
	}
	return
}

// Apply performs the operation on two values.
func (op AluOp) Apply(left, right uint32) (output uint32) {
	switch op {
	case ALU_ADD:
		output = left + right
	case ALU_SUB:
		output = left - right
	case ALU_AND:
		output = left & right
	case ALU_OR:
		output = left | right
	case ALU_XOR:
		output = left ^ right
	case ALU_SHL:
		output = left << (right & 0x1f)
	case ALU_SHR:
		output = left >> (right & 0x1f)
	}
	return
}

// EventMode is the condition a WaitEvent waits for.
type EventMode int

//go:generate go tool stringer -linecomment -type=EventMode
const (
	EVENT_ACTIVE      = EventMode(0) // active
	EVENT_INACTIVE    = EventMode(1) // inactive
	EVENT_TO_ACTIVE   = EventMode(2) // to_active
	EVENT_TO_INACTIVE = EventMode(3) // to_inactive
)

// eventModeMap maps wait mode names.
var eventModeMap = map[string]EventMode{
	"active":      EVENT_ACTIVE,
	"inactive":    EVENT_INACTIVE,
	"to_active":   EVENT_TO_ACTIVE,
	"to_inactive": EVENT_TO_INACTIVE,
}

// Valid is true for the defined modes.
func (mode EventMode) Valid() bool {
	return mode >= EVENT_ACTIVE && mode <= EVENT_TO_INACTIVE
}

// ParseEventMode accepts the mode names.
func ParseEventMode(name string) (mode EventMode, err error) {
	mode, ok := eventModeMap[name]
	if !ok {
		err = fmt.Errorf("%w: event mode %q", ErrOperationInvalid, name)
	}
	return
}
