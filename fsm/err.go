package fsm

import (
	"errors"

	"github.com/ezrec/lockstep/translate"
)

var f = translate.From

var (
	ErrMasterKind    = errors.New(f("master module must be a digitizer"))
	ErrWorkerKind    = errors.New(f("worker module must be an AWG"))
	ErrNoWorkers     = errors.New(f("no worker modules"))
	ErrCommand       = errors.New(f("console command unknown"))
	ErrConsoleClosed = errors.New(f("console quit"))
)
