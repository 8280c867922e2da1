package program

import (
	"fmt"
	"strings"
)

// Width is the bit width class of a register.
type Width int

//go:generate go tool stringer -linecomment -type=Width
const (
	WIDTH_SHORT = Width(16) // short
	WIDTH_LONG  = Width(32) // long
)

// Valid is true for the supported width classes.
func (w Width) Valid() bool {
	return w == WIDTH_SHORT || w == WIDTH_LONG
}

// Bits returns the number of bits held.
func (w Width) Bits() int {
	return int(w)
}

// Mask returns the mask of the bits held.
func (w Width) Mask() uint32 {
	return BitMask(int(w))
}

// ParseWidth accepts "short", "long", "16" or "32".
func ParseWidth(name string) (w Width, err error) {
	switch strings.ToLower(name) {
	case "short", "16":
		w = WIDTH_SHORT
	case "long", "32":
		w = WIDTH_LONG
	default:
		err = fmt.Errorf("%w: %q", ErrWidthInvalid, name)
	}
	return
}

// BitMask returns a mask of the low 'bits' bits.
func BitMask(bits int) uint32 {
	if bits >= 32 {
		return 0xffffffff
	}
	if bits <= 0 {
		return 0
	}
	return (uint32(1) << bits) - 1
}

// Register is a named storage cell of one engine.
type Register struct {
	engine  *Engine
	name    string
	width   Width
	initial uint32
	index   int
}

// Engine returns the owning engine.
func (reg *Register) Engine() *Engine { return reg.engine }

// Name returns the register name, unique within its engine.
func (reg *Register) Name() string { return reg.name }

// Width returns the register width class.
func (reg *Register) Width() Width { return reg.width }

// Initial returns the value loaded into the register before a run.
func (reg *Register) Initial() uint32 { return reg.initial }

// Index returns the register's position in its engine's register file.
func (reg *Register) Index() int { return reg.index }

// String returns "engine.register".
func (reg *Register) String() string {
	return reg.engine.name + "." + reg.name
}

func (reg *Register) isSource() {}
