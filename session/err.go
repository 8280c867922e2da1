package session

import (
	"errors"

	"github.com/google/uuid"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrResourceConflict = errors.New(f("resource already reserved"))
	ErrPhase            = errors.New(f("session phase invalid"))
	ErrReleased         = errors.New(f("session released"))
	ErrEngineMissing    = errors.New(f("engine missing"))
	ErrRegisterMissing  = errors.New(f("register missing"))
)

// ResourceConflictError reports a resource held by another owner.
type ResourceConflictError struct {
	Resource hw.Resource
	Owner    uuid.UUID
}

func (err *ResourceConflictError) Error() string {
	return f("%v: owned by %v: %v", err.Resource, err.Owner, ErrResourceConflict)
}

func (err *ResourceConflictError) Unwrap() error {
	return ErrResourceConflict
}
