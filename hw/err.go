package hw

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrSandboxMissing    = errors.New(f("sandbox missing"))
	ErrSandboxNotLoaded  = errors.New(f("sandbox not loaded"))
	ErrRegisterMissing   = errors.New(f("sandbox register missing"))
	ErrRegisterAccess    = errors.New(f("sandbox register access denied"))
	ErrRegisterOffset    = errors.New(f("sandbox register offset out of range"))
	ErrDescriptorSyntax  = errors.New(f("sandbox descriptor invalid"))
	ErrChannelInvalid    = errors.New(f("channel invalid"))
	ErrModuleKind        = errors.New(f("operation not supported by module kind"))
	ErrTriggerLine       = errors.New(f("trigger line invalid"))
	ErrSignalName        = errors.New(f("signal name invalid"))
	ErrModuleKindInvalid = errors.New(f("module kind invalid"))
	ErrModuleClosed      = errors.New(f("module closed"))
)

// ErrDescriptor reports the offending entry of a sandbox descriptor.
type ErrDescriptor struct {
	Register string
	Err      error
}

func (err *ErrDescriptor) Error() string {
	return f("register %v: %v", err.Register, err.Err)
}

func (err *ErrDescriptor) Unwrap() error {
	return err.Err
}
