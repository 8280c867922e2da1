// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

// Registers is an engine's register file, as seen by the host.
type Registers interface {
	// Lookup finds a register index by name.
	Lookup(name string) (int, bool)
	// Read a register.
	Read(index int) (uint32, error)
	// Write a register; the value is truncated to the register width.
	Write(index int, value uint32) error
}

// Backend executes compiled programs on engines.
type Backend interface {
	// Load transfers a compiled program to the engines.
	Load(comp *program.Compiled) error
	// Start begins execution on every engine at once, after offset.
	Start(ctx context.Context, offset time.Duration) error
	// Wait blocks until every engine stopped, or ctx is done.
	Wait(ctx context.Context) error
	// Stop halts every engine.
	Stop() error
	// Unload drops the program from the engines.
	Unload() error
	// Registers returns the register file of an engine.
	Registers(engine string) (Registers, error)
}

// Phase is the lifecycle state of a session.
type Phase int

//go:generate go tool stringer -linecomment -type=Phase
const (
	PHASE_LOADED   = Phase(0) // loaded
	PHASE_RUNNING  = Phase(1) // running
	PHASE_RELEASED = Phase(2) // released
)

// Options of a session.
type Options struct {
	Logger *zap.Logger // nil disables logging.
}

// Session is a compiled program loaded on a backend.
type Session struct {
	log     *zap.Logger
	comp    *program.Compiled
	backend Backend
	table   *Table
	owner   uuid.UUID

	mutex sync.Mutex
	phase Phase
}

// Load reserves the program's resources and loads it on the backend.
// Every session owns its reservations, so loading a program twice
// conflicts. Nothing stays reserved when Load fails.
func Load(comp *program.Compiled, backend Backend, table *Table, opts Options) (s *Session, err error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	owner := uuid.New()
	log = log.With(zap.Stringer("program", comp.Program.ID), zap.Stringer("session", owner))
	resources := comp.Resources.List()

	err = table.Reserve(owner, resources...)
	if err != nil {
		log.Error("reserve", zap.Error(err))
		return
	}

	err = backend.Load(comp)
	if err != nil {
		table.Release(owner)
		log.Error("load", zap.Error(err))
		return
	}

	log.Info("loaded",
		zap.Int("engines", len(comp.Engines)),
		zap.Stringers("resources", resources),
	)

	s = &Session{
		log:     log,
		comp:    comp,
		backend: backend,
		table:   table,
		owner:   owner,
		phase:   PHASE_LOADED,
	}
	return
}

// Owner returns the id the session's reservations are held under.
func (s *Session) Owner() uuid.UUID {
	return s.owner
}

// Compiled returns the loaded program.
func (s *Session) Compiled() *program.Compiled {
	return s.comp
}

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.phase
}

// Run starts every engine simultaneously, anchored startOffset from now.
// A failed start releases the session.
func (s *Session) Run(ctx context.Context, startOffset time.Duration) (err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch s.phase {
	case PHASE_RELEASED:
		err = ErrReleased
		return
	case PHASE_RUNNING:
		err = fmt.Errorf("%w: %v", ErrPhase, s.phase)
		return
	}

	err = s.backend.Start(ctx, startOffset)
	if err != nil {
		s.log.Error("run", zap.Error(err))
		err = errors.Join(err, s.release())
		return
	}

	s.log.Info("running", zap.Duration("start_offset", startOffset))
	s.phase = PHASE_RUNNING
	return
}

// Wait blocks until every engine stopped, or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mutex.Lock()
	phase := s.phase
	s.mutex.Unlock()

	if phase != PHASE_RUNNING {
		return fmt.Errorf("%w: %v", ErrPhase, phase)
	}

	return s.backend.Wait(ctx)
}

// Release stops the engines if running, unloads the program and frees
// every reserved resource. Later calls do nothing.
func (s *Session) Release() (err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.release()
}

func (s *Session) release() (err error) {
	if s.phase == PHASE_RELEASED {
		return
	}

	var errs []error
	if s.phase == PHASE_RUNNING {
		errs = append(errs, s.backend.Stop())
	}
	errs = append(errs, s.backend.Unload())
	count := s.table.Release(s.owner)
	s.phase = PHASE_RELEASED

	err = errors.Join(errs...)
	s.log.Info("released", zap.Int("resources", count), zap.Error(err))

	return
}

// HostRegister is asynchronous host access to an engine register.
type HostRegister struct {
	regs  Registers
	index int
}

// Read the current value.
func (reg *HostRegister) Read() (uint32, error) {
	return reg.regs.Read(reg.index)
}

// Write a value, truncated to the register width.
func (reg *HostRegister) Write(value uint32) error {
	return reg.regs.Write(reg.index, value)
}

// Register returns host access to an engine register.
func (s *Session) Register(engine, name string) (reg *HostRegister, err error) {
	if s.Phase() == PHASE_RELEASED {
		err = ErrReleased
		return
	}

	regs, err := s.backend.Registers(engine)
	if err != nil {
		return
	}

	index, ok := regs.Lookup(name)
	if !ok {
		err = fmt.Errorf("%w: %v.%v", ErrRegisterMissing, engine, name)
		return
	}

	reg = &HostRegister{regs: regs, index: index}
	return
}

// Sandbox returns an engine module's FPGA sandbox.
func (s *Session) Sandbox(engine, name string) (sb hw.Sandbox, err error) {
	ce, ok := s.comp.Engine(engine)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrEngineMissing, engine)
		return
	}

	return ce.Engine.Module().Sandbox(name)
}
