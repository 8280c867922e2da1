package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

var errInjected = errors.New("injected")

// fakeRegisters is a map backed register file.
type fakeRegisters struct {
	names  []string
	values []uint32
}

func (regs *fakeRegisters) Lookup(name string) (int, bool) {
	for n, str := range regs.names {
		if str == name {
			return n, true
		}
	}
	return -1, false
}

func (regs *fakeRegisters) Read(index int) (uint32, error) {
	return regs.values[index], nil
}

func (regs *fakeRegisters) Write(index int, value uint32) error {
	regs.values[index] = value
	return nil
}

type fakeBackend struct {
	loadErr  error
	startErr error

	calls []string
	regs  *fakeRegisters
}

func (be *fakeBackend) Load(comp *program.Compiled) error {
	be.calls = append(be.calls, "load")
	return be.loadErr
}

func (be *fakeBackend) Start(ctx context.Context, offset time.Duration) error {
	be.calls = append(be.calls, "start")
	return be.startErr
}

func (be *fakeBackend) Wait(ctx context.Context) error {
	be.calls = append(be.calls, "wait")
	return nil
}

func (be *fakeBackend) Stop() error {
	be.calls = append(be.calls, "stop")
	return nil
}

func (be *fakeBackend) Unload() error {
	be.calls = append(be.calls, "unload")
	return nil
}

func (be *fakeBackend) Registers(engine string) (Registers, error) {
	if engine != "master" {
		return nil, ErrEngineMissing
	}
	return be.regs, nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		regs: &fakeRegisters{names: []string{"counter"}, values: []uint32{0}},
	}
}

func compileSimple(t *testing.T) *program.Compiled {
	return compileOn(t, hw.TRIGGER_PXI2, 1e8)
}

func compileOn(t *testing.T, line hw.TriggerLine, clocks ...float64) *program.Compiled {
	dig := hw.NewSimModule(hw.ModuleDescriptor{Kind: hw.MODULE_DIGITIZER, Chassis: 1, Slot: 2})
	awg := hw.NewSimModule(hw.ModuleDescriptor{Kind: hw.MODULE_AWG, Chassis: 1, Slot: 3})

	prog := program.New()
	master, err := prog.AddEngine(dig, "master")
	require.NoError(t, err)
	_, err = prog.AddEngine(awg, "worker")
	require.NoError(t, err)

	master.AddRegister("counter", program.WIDTH_LONG, 0)
	prog.AddJunction("meet", 10)
	prog.AddGlobalEnd("done", 10)
	prog.SetSyncResources(line)
	prog.SetNonNativeClocks(clocks...)

	comp, err := program.Compile(prog)
	require.NoError(t, err)
	return comp
}

func TestSessionLifecycle(t *testing.T) {
	assert := assert.New(t)

	comp := compileSimple(t)
	be := newBackend()
	tb := NewTable()

	s, err := Load(comp, be, tb, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.Equal(PHASE_LOADED, s.Phase())
	assert.Equal(2, len(tb.Reserved()))

	assert.NoError(s.Run(context.Background(), time.Millisecond))
	assert.Equal(PHASE_RUNNING, s.Phase())
	assert.ErrorIs(s.Run(context.Background(), 0), ErrPhase)
	assert.NoError(s.Wait(context.Background()))

	reg, err := s.Register("master", "counter")
	require.NoError(t, err)
	assert.NoError(reg.Write(42))
	value, err := reg.Read()
	assert.NoError(err)
	assert.Equal(uint32(42), value)

	_, err = s.Register("master", "missing")
	assert.ErrorIs(err, ErrRegisterMissing)

	_, err = s.Sandbox("master", hw.SANDBOX_DEFAULT)
	assert.NoError(err)
	_, err = s.Sandbox("nobody", hw.SANDBOX_DEFAULT)
	assert.ErrorIs(err, ErrEngineMissing)

	assert.NoError(s.Release())
	assert.NoError(s.Release())
	assert.Equal(PHASE_RELEASED, s.Phase())
	assert.Empty(tb.Reserved())
	assert.Equal([]string{"load", "start", "wait", "stop", "unload"}, be.calls)

	assert.ErrorIs(s.Run(context.Background(), 0), ErrReleased)
	_, err = s.Register("master", "counter")
	assert.ErrorIs(err, ErrReleased)
}

func TestSessionLoadFailure(t *testing.T) {
	assert := assert.New(t)

	comp := compileSimple(t)
	be := newBackend()
	be.loadErr = errInjected
	tb := NewTable()

	s, err := Load(comp, be, tb, Options{})
	assert.ErrorIs(err, errInjected)
	assert.Nil(s)
	assert.Empty(tb.Reserved())
}

func TestSessionConflict(t *testing.T) {
	assert := assert.New(t)

	tb := NewTable()

	first, err := Load(compileSimple(t), newBackend(), tb, Options{})
	require.NoError(t, err)

	// Same lines and clocks, different program.
	be := newBackend()
	_, err = Load(compileSimple(t), be, tb, Options{})
	assert.ErrorIs(err, ErrResourceConflict)
	assert.Empty(be.calls)
	assert.Equal(2, len(tb.Reserved()))

	assert.NoError(first.Release())
	assert.Empty(tb.Reserved())
}

func TestSessionRunFailure(t *testing.T) {
	assert := assert.New(t)

	be := newBackend()
	be.startErr = errInjected
	tb := NewTable()

	s, err := Load(compileSimple(t), be, tb, Options{})
	require.NoError(t, err)

	assert.ErrorIs(s.Run(context.Background(), 0), errInjected)
	assert.Equal(PHASE_RELEASED, s.Phase())
	assert.Empty(tb.Reserved())
	assert.Equal([]string{"load", "start", "unload"}, be.calls)

	assert.NoError(s.Release())
}

func TestSessionReload(t *testing.T) {
	assert := assert.New(t)

	comp := compileSimple(t)
	tb := NewTable()

	first, err := Load(comp, newBackend(), tb, Options{})
	require.NoError(t, err)
	reserved := tb.Reserved()

	// The same program loaded twice conflicts with itself.
	be := newBackend()
	_, err = Load(comp, be, tb, Options{})
	assert.ErrorIs(err, ErrResourceConflict)
	assert.Empty(be.calls)
	assert.Equal(reserved, tb.Reserved())

	// A failed load beside a live session leaves its reservations alone.
	be = newBackend()
	be.loadErr = errInjected
	_, err = Load(compileOn(t, hw.TRIGGER_PXI5), be, tb, Options{})
	assert.ErrorIs(err, errInjected)
	assert.Equal(reserved, tb.Reserved())
	for _, res := range reserved {
		owner, ok := tb.Owner(res)
		assert.True(ok)
		assert.Equal(first.Owner(), owner)
	}
	assert.Equal(PHASE_LOADED, first.Phase())

	// Releasing one session frees only its own resources.
	second, err := Load(compileOn(t, hw.TRIGGER_PXI5), newBackend(), tb, Options{})
	require.NoError(t, err)
	assert.NotEqual(first.Owner(), second.Owner())
	assert.Equal(3, len(tb.Reserved()))

	assert.NoError(first.Release())
	assert.Equal(1, len(tb.Reserved()))
	owner, ok := tb.Owner(hw.LineResource(1, hw.TRIGGER_PXI5))
	assert.True(ok)
	assert.Equal(second.Owner(), owner)

	assert.NoError(second.Release())
	assert.Empty(tb.Reserved())
}
