package engine

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrHalted         = errors.New(f("engine halted"))
	ErrNotWaiting     = errors.New(f("engine not waiting"))
	ErrNotAtJunction  = errors.New(f("engine not at junction"))
	ErrRegisterIndex  = errors.New(f("register index invalid"))
	ErrSourceInvalid  = errors.New(f("read source invalid"))
	ErrEventMissing   = errors.New(f("event line missing"))
	ErrOperationUnset = errors.New(f("operation unknown"))
)

// ErrStep reports the instruction that failed.
type ErrStep struct {
	Engine string
	Index  int
	Opcode string
	Err    error
}

func (err *ErrStep) Error() string {
	return f("engine %v step %04d %v: %v", err.Engine, err.Index, err.Opcode, err.Err)
}

func (err *ErrStep) Unwrap() error {
	return err.Err
}
