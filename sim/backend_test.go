package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ezrec/lockstep/engine"
	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

const (
	eventually = 2 * time.Second
	tick       = time.Millisecond
)

type loop struct {
	comp   *program.Compiled
	dig    *hw.SimModule
	awg    *hw.SimModule
	sb     *hw.SimSandbox
	count  *program.Register
	wave   *program.Register
	shared *program.Register
}

// buildLoop is a digitizer waiting for a trigger, then sharing a sandbox
// value with an AWG at a junction.
func buildLoop(t *testing.T, bits int) (lp *loop) {
	lp = &loop{}

	lp.dig = hw.NewSimModule(hw.ModuleDescriptor{Name: "dig", Kind: hw.MODULE_DIGITIZER, Chassis: 1, Slot: 2})
	lp.awg = hw.NewSimModule(hw.ModuleDescriptor{Name: "awg", Kind: hw.MODULE_AWG, Chassis: 1, Slot: 3, Channels: 1})

	trigger := hw.FpgaUserEvent(4)
	lp.sb, _ = lp.dig.SimSandbox(hw.SANDBOX_DEFAULT)
	lp.sb.Load(&hw.SandboxDescriptor{
		Registers: []hw.SandboxRegister{
			{Name: "data", Length: 4, Address: 0},
			{Name: "trigger", Length: 4, Address: 4, Event: &trigger},
		},
	})

	prog := program.New()
	master, err := prog.AddEngine(lp.dig, "master")
	require.NoError(t, err)
	worker, err := prog.AddEngine(lp.awg, "worker")
	require.NoError(t, err)

	lp.count, _ = master.AddRegister("count", program.WIDTH_LONG, 0)
	value, _ := master.AddRegister("value", program.WIDTH_LONG, 0)
	lp.wave, _ = worker.AddRegister("wave", program.WIDTH_LONG, 0)
	lp.shared, _ = worker.AddRegister("shared", program.WIDTH_LONG, 0)
	ev, _ := master.BindEvent(trigger, "go")

	ms := master.Sequence()
	ws := worker.Sequence()

	ms.AddWaitEvent("", 10, ev, program.EVENT_TO_ACTIVE, program.WAIT_FOREVER)
	ms.AddRead("", 20, value, program.SandboxRef{Sandbox: hw.SANDBOX_DEFAULT, Register: "data"})

	jn, err := prog.AddJunction("meet", 100)
	require.NoError(t, err)
	_, err = jn.Share("value", value, bits, []*program.Register{lp.wave})
	require.NoError(t, err)

	ms.AddArithmetic("", 10, program.ALU_ADD, program.Reg(lp.count), program.Imm(1), lp.count)
	ws.AddRead("", 20, lp.shared, lp.wave)

	require.NoError(t, prog.AddGlobalJump("again", 10, program.LABEL_START))
	require.NoError(t, prog.AddGlobalEnd("done", 10))
	require.NoError(t, prog.SetSyncResources(hw.TRIGGER_PXI0, hw.TRIGGER_PXI1))

	lp.comp, err = program.Compile(prog)
	require.NoError(t, err)

	return
}

func (lp *loop) pulse(t *testing.T) {
	require.NoError(t, lp.sb.Write("trigger", 1))
	require.NoError(t, lp.sb.Write("trigger", 0))
}

func newBackend(t *testing.T) *Backend {
	return New(Options{
		Logger:     zaptest.NewLogger(t),
		Verbose:    true,
		Registerer: prometheus.NewRegistry(),
	})
}

func readRegister(be *Backend, reg *program.Register) uint32 {
	regs, err := be.Registers(reg.Engine().Name())
	if err != nil {
		return 0
	}
	value, _ := regs.Read(reg.Index())
	return value
}

func TestBackendShare(t *testing.T) {
	assert := assert.New(t)

	lp := buildLoop(t, 16)
	be := newBackend(t)

	require.NoError(t, be.Load(lp.comp))
	require.NoError(t, be.Start(context.Background(), 0))
	defer be.Unload()

	require.NoError(t, lp.sb.Write("data", 0x12345678))
	lp.pulse(t)

	assert.Eventually(func() bool {
		return readRegister(be, lp.count) == 1
	}, eventually, tick)
	assert.Eventually(func() bool {
		return readRegister(be, lp.shared) == 0x5678
	}, eventually, tick)
	assert.Equal(uint32(0x5678), readRegister(be, lp.wave))
	assert.Equal(uint64(1), be.Fired(0))
	assert.Equal(1.0, testutil.ToFloat64(be.Metrics().Junctions.WithLabelValues("meet")))

	assert.NoError(be.Stop())
	assert.NoError(be.Stop())

	stats, err := be.Stats("master")
	assert.NoError(err)
	assert.Equal(engine.STATUS_WAIT, stats.Status)
	assert.Equal(0, stats.Ip)
}

func TestBackendCycles(t *testing.T) {
	assert := assert.New(t)

	lp := buildLoop(t, 8)
	be := newBackend(t)

	require.NoError(t, be.Load(lp.comp))
	require.NoError(t, be.Start(context.Background(), time.Millisecond))
	defer be.Unload()

	for n := range 5 {
		value := uint32(0x100 + n)
		require.NoError(t, lp.sb.Write("data", value))
		lp.pulse(t)

		assert.Eventually(func() bool {
			return readRegister(be, lp.count) == uint32(n+1)
		}, eventually, tick)
		assert.Eventually(func() bool {
			return readRegister(be, lp.shared) == value&0xff
		}, eventually, tick)
	}

	// Counter equals completed cycles.
	assert.Equal(uint64(5), be.Fired(0))
	assert.Equal(uint32(5), readRegister(be, lp.count))
}

func TestBackendPulseBurst(t *testing.T) {
	assert := assert.New(t)

	lp := buildLoop(t, 16)

	// Paced, so the master is still busy while the burst arrives.
	be := New(Options{
		Logger:     zaptest.NewLogger(t),
		Registerer: prometheus.NewRegistry(),
		Pace:       true,
		TimeScale:  1e5,
	})
	require.NoError(t, be.Load(lp.comp))
	require.NoError(t, be.Start(context.Background(), 0))
	defer be.Unload()

	for range 50 {
		lp.pulse(t)
	}

	// Edges seen while busy collapse into one pending edge.
	assert.Eventually(func() bool {
		return readRegister(be, lp.count) >= 1
	}, eventually, tick)
	time.Sleep(100 * time.Millisecond)

	count := readRegister(be, lp.count)
	assert.LessOrEqual(count, uint32(2))
	assert.Equal(uint64(count), be.Fired(0))

	// No cycles run without stimulus.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(count, readRegister(be, lp.count))

	lp.pulse(t)
	assert.Eventually(func() bool {
		return readRegister(be, lp.count) == count+1
	}, eventually, tick)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(count+1, readRegister(be, lp.count))
	assert.Equal(uint64(count+1), be.Fired(0))
}

func TestBackendHostWrite(t *testing.T) {
	assert := assert.New(t)

	lp := buildLoop(t, 32)
	be := newBackend(t)
	require.NoError(t, be.Load(lp.comp))

	regs, err := be.Registers("master")
	require.NoError(t, err)

	index, ok := regs.Lookup("count")
	assert.True(ok)

	// Start resets registers to their initial values.
	assert.NoError(regs.Write(index, 77))
	require.NoError(t, be.Start(context.Background(), 0))
	defer be.Unload()

	assert.Eventually(func() bool {
		value, _ := regs.Read(index)
		return value == 0
	}, eventually, tick)

	_, err = be.Registers("nobody")
	assert.ErrorIs(err, ErrEngineMissing)

	assert.ErrorIs(be.Start(context.Background(), 0), ErrRunning)
	assert.ErrorIs(be.Load(lp.comp), ErrRunning)
}

func TestBackendTimeout(t *testing.T) {
	assert := assert.New(t)

	mod := hw.NewSimModule(hw.ModuleDescriptor{Kind: hw.MODULE_DIGITIZER, Chassis: 1, Slot: 2})
	prog := program.New()
	eng, _ := prog.AddEngine(mod, "solo")
	ev, _ := eng.BindEvent(hw.FpgaUserEvent(0), "never")
	eng.Sequence().AddWaitEvent("", 10, ev, program.EVENT_TO_ACTIVE, 1000)
	eng.Sequence().AddEnd("", 10)
	prog.SetSyncResources(hw.TRIGGER_PXI0)

	comp, err := program.Compile(prog)
	require.NoError(t, err)

	be := newBackend(t)
	require.NoError(t, be.Load(comp))
	require.NoError(t, be.Start(context.Background(), 0))

	ctx, cancel := context.WithTimeout(context.Background(), eventually)
	defer cancel()
	assert.NoError(be.Wait(ctx))

	stats, err := be.Stats("solo")
	assert.NoError(err)
	assert.Equal(1, stats.Timeouts)
	assert.Equal(int64(1020), stats.Clock)
	assert.Equal(1.0, testutil.ToFloat64(be.Metrics().Timeouts.WithLabelValues("solo")))

	assert.NoError(be.Unload())
	assert.ErrorIs(be.Start(context.Background(), 0), ErrNotLoaded)
}

func TestBackendAbandon(t *testing.T) {
	assert := assert.New(t)

	awg := hw.NewSimModule(hw.ModuleDescriptor{Kind: hw.MODULE_AWG, Chassis: 1, Slot: 3, Channels: 1})

	prog := program.New()
	prog.AddEngine(hw.NewSimModule(hw.ModuleDescriptor{Kind: hw.MODULE_DIGITIZER, Chassis: 1, Slot: 2}), "master")
	worker, _ := prog.AddEngine(awg, "worker")
	trig, _ := worker.BindAction(hw.AwgTrigger(1), "trig")
	worker.Sequence().AddAction("", 10, trig)
	prog.AddJunction("meet", 100)
	prog.AddGlobalEnd("done", 10)
	prog.SetSyncResources(hw.TRIGGER_PXI0)

	comp, err := program.Compile(prog)
	require.NoError(t, err)

	// The worker faults before the junction, leaving the master behind.
	awg.Close()

	be := newBackend(t)
	require.NoError(t, be.Load(comp))
	require.NoError(t, be.Start(context.Background(), 0))
	defer be.Unload()

	ctx, cancel := context.WithTimeout(context.Background(), eventually)
	defer cancel()
	err = be.Wait(ctx)
	assert.True(errors.Is(err, hw.ErrModuleClosed) || errors.Is(err, ErrJunctionAbandon), "%v", err)
	assert.Equal(1.0, testutil.ToFloat64(be.Metrics().Failures.WithLabelValues("worker")))

	be.mutex.Lock()
	b := be.barrier
	be.mutex.Unlock()
	assert.ErrorIs(b.Await(context.Background(), 0), ErrJunctionAbandon)
	assert.Equal(uint64(0), be.Fired(0))
}

func TestBarrier(t *testing.T) {
	assert := assert.New(t)

	var mutex sync.Mutex
	var fired []int
	var arrived int

	b := newBarrier(3, func(junction int) error {
		mutex.Lock()
		defer mutex.Unlock()
		// Everyone arrived before the fire.
		assert.Equal(3, arrived)
		fired = append(fired, junction)
		arrived = 0
		return nil
	})

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for junction := range 4 {
				mutex.Lock()
				arrived++
				mutex.Unlock()
				assert.NoError(b.Await(context.Background(), junction))
			}
		}()
	}
	wg.Wait()

	assert.Equal([]int{0, 1, 2, 3}, fired)
	assert.Equal(uint64(1), b.Fired(2))
}

func TestBarrierMismatch(t *testing.T) {
	assert := assert.New(t)

	b := newBarrier(2, func(junction int) error { return nil })

	errs := make(chan error, 2)
	go func() { errs <- b.Await(context.Background(), 0) }()

	assert.Eventually(func() bool {
		b.mutex.Lock()
		defer b.mutex.Unlock()
		return b.arrived == 1
	}, eventually, tick)

	assert.ErrorIs(b.Await(context.Background(), 1), ErrJunctionMismatch)
	assert.ErrorIs(<-errs, ErrJunctionMismatch)

	// Broken stays broken.
	assert.ErrorIs(b.Await(context.Background(), 0), ErrJunctionMismatch)
}
