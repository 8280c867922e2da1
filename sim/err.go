package sim

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrNotLoaded        = errors.New(f("no program loaded"))
	ErrRunning          = errors.New(f("program running"))
	ErrJunctionMismatch = errors.New(f("engines arrived at different junctions"))
	ErrJunctionAbandon  = errors.New(f("junction abandoned by halted engine"))
	ErrEngineMissing    = errors.New(f("engine missing"))
)
