package program

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	// Build errors
	ErrDuplicateName        = errors.New(f("duplicate name"))
	ErrShareWidth           = errors.New(f("register share width mismatch"))
	ErrShareSourceEngine    = errors.New(f("register share destination on source engine"))
	ErrShareDuplicateEngine = errors.New(f("register share destination engine duplicated"))
	ErrShareEmpty           = errors.New(f("register share has no destination"))
	ErrForeignRegister      = errors.New(f("register not owned by program"))
	ErrFrozen               = errors.New(f("program already compiled"))
	ErrWidthInvalid         = errors.New(f("register width invalid"))
	ErrOperationInvalid     = errors.New(f("operation invalid"))
	ErrModuleMissing        = errors.New(f("engine module missing"))

	// Compile errors
	ErrLabelMissing       = errors.New(f("label missing"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrJunctionAsymmetric = errors.New(f("junction asymmetric"))
	ErrJunctionCrossed    = errors.New(f("jump crosses junction"))
	ErrTimeBudget         = errors.New(f("time budget invalid"))
	ErrShareInvalid       = errors.New(f("register share invalid"))
	ErrRegisterOwner      = errors.New(f("operand not owned by engine"))
	ErrSandbox            = errors.New(f("sandbox register unresolved"))
	ErrModuleUnsupported  = errors.New(f("instruction not supported by module"))
	ErrResources          = errors.New(f("sync resources insufficient"))
	ErrEmpty              = errors.New(f("program has no engines"))
)

// ConfigKind classifies a build time failure.
type ConfigKind int

//go:generate go tool stringer -linecomment -type=ConfigKind
const (
	KIND_DUPLICATE_NAME         = ConfigKind(0) // duplicate-name
	KIND_SHARE_WIDTH            = ConfigKind(1) // share-width
	KIND_SHARE_SOURCE_ENGINE    = ConfigKind(2) // share-source-engine
	KIND_SHARE_DUPLICATE_ENGINE = ConfigKind(3) // share-duplicate-engine
	KIND_SHARE_EMPTY            = ConfigKind(4) // share-empty
	KIND_FOREIGN_REGISTER       = ConfigKind(5) // foreign-register
	KIND_FROZEN                 = ConfigKind(6) // frozen
	KIND_WIDTH                  = ConfigKind(7) // width
	KIND_OPERATION              = ConfigKind(8) // operation
	KIND_MODULE                 = ConfigKind(9) // module
)

var configKindErr = map[ConfigKind]error{
	KIND_DUPLICATE_NAME:         ErrDuplicateName,
	KIND_SHARE_WIDTH:            ErrShareWidth,
	KIND_SHARE_SOURCE_ENGINE:    ErrShareSourceEngine,
	KIND_SHARE_DUPLICATE_ENGINE: ErrShareDuplicateEngine,
	KIND_SHARE_EMPTY:            ErrShareEmpty,
	KIND_FOREIGN_REGISTER:       ErrForeignRegister,
	KIND_FROZEN:                 ErrFrozen,
	KIND_WIDTH:                  ErrWidthInvalid,
	KIND_OPERATION:              ErrOperationInvalid,
	KIND_MODULE:                 ErrModuleMissing,
}

// ConfigurationError is a build time failure. Engine is empty for program
// level entities such as junctions.
type ConfigurationError struct {
	Kind   ConfigKind
	Engine string
	Name   string
}

func (err *ConfigurationError) Error() string {
	if len(err.Engine) == 0 {
		return f("%v: %q: %v", err.Kind, err.Name, configKindErr[err.Kind])
	}
	return f("%v: engine %v: %q: %v", err.Kind, err.Engine, err.Name, configKindErr[err.Kind])
}

func (err *ConfigurationError) Unwrap() error {
	return configKindErr[err.Kind]
}

// CompileKind classifies a compile time failure.
type CompileKind int

//go:generate go tool stringer -linecomment -type=CompileKind
const (
	COMPILE_EMPTY               = CompileKind(0)  // empty
	COMPILE_TIME_BUDGET         = CompileKind(1)  // time-budget
	COMPILE_REGISTER_OWNER      = CompileKind(2)  // register-owner
	COMPILE_MODULE              = CompileKind(3)  // module
	COMPILE_SANDBOX             = CompileKind(4)  // sandbox
	COMPILE_LABEL_DUPLICATE     = CompileKind(5)  // label-duplicate
	COMPILE_LABEL_MISSING       = CompileKind(6)  // label-missing
	COMPILE_JUNCTION_CROSSED    = CompileKind(7)  // junction-crossed
	COMPILE_JUNCTION_ASYMMETRIC = CompileKind(8)  // junction-asymmetric
	COMPILE_SHARE               = CompileKind(9)  // share
	COMPILE_RESOURCES           = CompileKind(10) // resources
)

var compileKindErr = map[CompileKind]error{
	COMPILE_EMPTY:               ErrEmpty,
	COMPILE_TIME_BUDGET:         ErrTimeBudget,
	COMPILE_REGISTER_OWNER:      ErrRegisterOwner,
	COMPILE_MODULE:              ErrModuleUnsupported,
	COMPILE_SANDBOX:             ErrSandbox,
	COMPILE_LABEL_DUPLICATE:     ErrLabelDuplicate,
	COMPILE_LABEL_MISSING:       ErrLabelMissing,
	COMPILE_JUNCTION_CROSSED:    ErrJunctionCrossed,
	COMPILE_JUNCTION_ASYMMETRIC: ErrJunctionAsymmetric,
	COMPILE_SHARE:               ErrShareInvalid,
	COMPILE_RESOURCES:           ErrResources,
}

// CompileError is the first violation found by Compile.
type CompileError struct {
	Kind   CompileKind
	Engine string // Offending engine, if any.
	Detail string // Offending entity and reason.
}

func (err *CompileError) Error() string {
	if len(err.Engine) == 0 {
		return f("compile %v: %v: %v", err.Kind, err.Detail, compileKindErr[err.Kind])
	}
	return f("compile %v: engine %v: %v: %v", err.Kind, err.Engine, err.Detail, compileKindErr[err.Kind])
}

func (err *CompileError) Unwrap() error {
	return compileKindErr[err.Kind]
}
