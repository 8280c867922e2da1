package script

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrEngineMissing   = errors.New(f("engine missing"))
	ErrModuleMissing   = errors.New(f("module missing"))
	ErrRegisterMissing = errors.New(f("register missing"))
	ErrEventMissing    = errors.New(f("event missing"))
	ErrActionMissing   = errors.New(f("action missing"))
	ErrJunctionMissing = errors.New(f("junction missing"))
	ErrOperand         = errors.New(f("operand invalid"))
	ErrExpression      = errors.New(f("expression not an integer"))
)
