package engine

import (
	"slices"
	"sync/atomic"

	"github.com/ezrec/lockstep/program"
)

// RegisterFile holds the current values of an engine's registers. Values
// are masked to the register width. Reads and writes are atomic, so the
// host may access registers while the engine runs.
type RegisterFile struct {
	registers []*program.Register
	cells     []atomic.Uint32
}

// NewRegisterFile creates a register file loaded with initial values.
func NewRegisterFile(registers []*program.Register) (rf *RegisterFile) {
	rf = &RegisterFile{
		registers: slices.Clone(registers),
		cells:     make([]atomic.Uint32, len(registers)),
	}
	rf.Reset()
	return
}

// Reset loads every register's initial value.
func (rf *RegisterFile) Reset() {
	for n, reg := range rf.registers {
		rf.cells[n].Store(reg.Initial())
	}
}

// Len returns the number of registers.
func (rf *RegisterFile) Len() int {
	return len(rf.registers)
}

// Lookup finds the index of a register by name.
func (rf *RegisterFile) Lookup(name string) (index int, ok bool) {
	index = slices.IndexFunc(rf.registers, func(reg *program.Register) bool { return reg.Name() == name })
	ok = index >= 0
	return
}

// Read a register value.
func (rf *RegisterFile) Read(index int) (value uint32, err error) {
	if index < 0 || index >= len(rf.cells) {
		err = ErrRegisterIndex
		return
	}
	value = rf.cells[index].Load()
	return
}

// Write a register value, truncated to the register width.
func (rf *RegisterFile) Write(index int, value uint32) (err error) {
	if index < 0 || index >= len(rf.cells) {
		err = ErrRegisterIndex
		return
	}
	rf.cells[index].Store(value & rf.registers[index].Width().Mask())
	return
}

// Values returns a snapshot of every register value.
func (rf *RegisterFile) Values() (values []uint32) {
	values = make([]uint32, len(rf.cells))
	for n := range rf.cells {
		values[n] = rf.cells[n].Load()
	}
	return
}
