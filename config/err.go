package config

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrFormat    = errors.New(f("configuration format unknown"))
	ErrSyntax    = errors.New(f("configuration syntax invalid"))
	ErrTiming    = errors.New(f("time budget invalid"))
	ErrModule    = errors.New(f("module invalid"))
	ErrNoModules = errors.New(f("no modules declared"))
)

// ErrField reports the offending entry of a configuration file.
type ErrField struct {
	Field string
	Err   error
}

func (err *ErrField) Error() string {
	return f("%v: %v", err.Field, err.Err)
}

func (err *ErrField) Unwrap() error {
	return err.Err
}
