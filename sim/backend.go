// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/lockstep/engine"
	"github.com/ezrec/lockstep/program"
	"github.com/ezrec/lockstep/session"
)

// Options of a simulated backend.
type Options struct {
	Logger     *zap.Logger           // nil disables logging.
	Verbose    bool                  // Set to trace every instruction.
	Registerer prometheus.Registerer // nil leaves metrics unregistered.
	TimeScale  float64               // Wall time per engine time; zero is 1.
	Pace       bool                  // Set to sleep each instruction's time budget.
}

// Backend runs compiled programs on simulated engines.
type Backend struct {
	opts    Options
	log     *zap.Logger
	metrics *Metrics

	mutex   sync.Mutex
	comp    *program.Compiled
	cores   []*engine.Core
	barrier *barrier
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

var _ session.Backend = (*Backend)(nil)

// New creates a simulated backend.
func New(opts Options) (be *Backend) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TimeScale <= 0 {
		opts.TimeScale = 1
	}

	be = &Backend{
		opts:    opts,
		log:     log,
		metrics: NewMetrics(opts.Registerer),
	}
	return
}

// Metrics returns the backend's counters.
func (be *Backend) Metrics() *Metrics {
	return be.metrics
}

// scale converts engine nanoseconds to wall time.
func (be *Backend) scale(ns int64) time.Duration {
	return time.Duration(float64(ns) * be.opts.TimeScale)
}

// Load creates one engine core per compiled engine.
func (be *Backend) Load(comp *program.Compiled) (err error) {
	be.mutex.Lock()
	defer be.mutex.Unlock()

	if be.cancel != nil {
		err = ErrRunning
		return
	}

	cores := make([]*engine.Core, len(comp.Engines))
	for n, ce := range comp.Engines {
		eng := ce.Engine
		core := engine.NewCore(ce, &env{
			ModuleEnvironment: engine.ModuleEnvironment{Module: eng.Module()},
			pulses:            be.metrics.Pulses,
			name:              eng.Name(),
		})
		core.Verbose = be.opts.Verbose
		core.Logger = be.log
		cores[n] = core
	}

	be.comp = comp
	be.cores = cores
	be.barrier = nil
	be.log.Debug("sim load", zap.Int("engines", len(cores)))

	return
}

// fire performs the register shares of a junction. Every source is read
// before any destination is written.
func (be *Backend) fire(junction int) (err error) {
	jn := be.comp.Program.Junctions()[junction]
	shares := jn.Shares()

	values := make([]uint32, len(shares))
	for n, rs := range shares {
		src := rs.Source()
		values[n], err = be.cores[src.Engine().Index()].Registers.Read(src.Index())
		if err != nil {
			return
		}
	}

	for n, rs := range shares {
		value := values[n] & rs.Mask()
		for _, dest := range rs.Dests() {
			err = be.cores[dest.Engine().Index()].Registers.Write(dest.Index(), value)
			if err != nil {
				return
			}
		}
		be.log.Debug("share", zap.String("junction", jn.Name()), zap.String("share", rs.Name()), zap.Uint32("value", value))
	}

	be.metrics.Junctions.WithLabelValues(jn.Name()).Inc()
	return
}

// Start resets every core and starts them together once offset elapsed.
func (be *Backend) Start(ctx context.Context, offset time.Duration) (err error) {
	be.mutex.Lock()
	defer be.mutex.Unlock()

	if be.comp == nil {
		err = ErrNotLoaded
		return
	}
	if be.cancel != nil {
		err = ErrRunning
		return
	}

	for _, core := range be.cores {
		err = core.Reset()
		if err != nil {
			return
		}
	}

	be.barrier = newBarrier(len(be.cores), be.fire)
	be.err = nil
	be.done = make(chan struct{})

	ctx, be.cancel = context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)

	start := make(chan struct{})
	timer := time.AfterFunc(offset, func() { close(start) })

	for _, core := range be.cores {
		group.Go(func() error {
			return be.runCore(gctx, core, start)
		})
	}

	done := be.done
	go func() {
		err := group.Wait()
		timer.Stop()

		be.mutex.Lock()
		be.err = err
		be.mutex.Unlock()

		if err != nil {
			be.log.Error("sim stopped", zap.Error(err))
		} else {
			be.log.Info("sim stopped")
		}
		close(done)
	}()

	be.log.Info("sim start", zap.Duration("offset", offset), zap.Int("engines", len(be.cores)))
	return
}

func (be *Backend) runCore(ctx context.Context, core *engine.Core, start <-chan struct{}) (err error) {
	name := core.Name()
	instructions := be.metrics.Instructions.WithLabelValues(name)

	defer func() {
		if err != nil {
			be.metrics.Failures.WithLabelValues(name).Inc()
			be.log.Error("engine fault", zap.String("engine", name), zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
		return
	case <-start:
	}

	for ctx.Err() == nil {
		var status engine.Status
		status, err = core.Tick()
		if err != nil {
			be.barrier.Leave()
			return
		}

		switch status {
		case engine.STATUS_NEXT:
			instructions.Inc()
			be.pace(ctx, core)
		case engine.STATUS_WAIT:
			err = be.wait(ctx, core, instructions)
		case engine.STATUS_JUNCTION:
			index, _ := core.Junction()
			err = be.barrier.Await(ctx, index)
			if err == nil && ctx.Err() == nil {
				err = core.Pass()
				instructions.Inc()
			}
		case engine.STATUS_HALTED:
			be.barrier.Leave()
			be.log.Debug("engine halted", zap.String("engine", name), zap.Int64("clock_ns", core.Clock))
			return
		}

		if err != nil {
			be.barrier.Leave()
			return
		}
	}

	return
}

// pace sleeps the time budget of the last completed instruction.
func (be *Backend) pace(ctx context.Context, core *engine.Core) {
	if !be.opts.Pace {
		return
	}

	index := core.Ip - 1
	if index < 0 || index >= len(core.Engine.Steps) {
		return
	}

	timer := time.NewTimer(be.scale(core.Engine.Steps[index].TimeNs()))
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// wait blocks a core on its event line until the wait is satisfied, times
// out, or ctx is done.
func (be *Backend) wait(ctx context.Context, core *engine.Core, instructions prometheus.Counter) (err error) {
	wait, ok := core.Waiting()
	if !ok {
		return
	}

	line := core.Engine.Engine.Module().Event(wait.Event.ID())
	if line == nil {
		err = fmt.Errorf("%w: %v", engine.ErrEventMissing, wait.Event)
		return
	}

	var expired <-chan time.Time
	if wait.TimeoutNs != program.WAIT_FOREVER {
		timer := time.NewTimer(be.scale(wait.TimeoutNs))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		changed := line.Changed()

		var status engine.Status
		status, err = core.Tick()
		if err != nil || status != engine.STATUS_WAIT {
			if err == nil {
				instructions.Inc()
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-changed:
		case <-expired:
			be.metrics.Timeouts.WithLabelValues(core.Name()).Inc()
			err = core.Expire()
			if err == nil {
				instructions.Inc()
			}
			return
		}
	}
}

// Wait blocks until every engine stopped, or ctx is done. It returns the
// first engine fault.
func (be *Backend) Wait(ctx context.Context) (err error) {
	be.mutex.Lock()
	done := be.done
	be.mutex.Unlock()

	if done == nil {
		err = ErrNotLoaded
		return
	}

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-done:
		be.mutex.Lock()
		err = be.err
		be.mutex.Unlock()
	}
	return
}

// Done is closed once every engine of the last Start stopped.
func (be *Backend) Done() <-chan struct{} {
	be.mutex.Lock()
	defer be.mutex.Unlock()

	return be.done
}

// Stop cancels every engine and waits for them. Engine faults are only
// logged, as real hardware does not report them.
func (be *Backend) Stop() (err error) {
	be.mutex.Lock()
	cancel := be.cancel
	done := be.done
	be.cancel = nil
	be.mutex.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	return
}

// Unload stops the engines and drops the program.
func (be *Backend) Unload() (err error) {
	err = be.Stop()

	be.mutex.Lock()
	defer be.mutex.Unlock()

	be.comp = nil
	be.cores = nil
	be.barrier = nil

	return
}

// Registers returns the register file of an engine.
func (be *Backend) Registers(name string) (regs session.Registers, err error) {
	core, err := be.core(name)
	if err != nil {
		return
	}
	return core.Registers, nil
}

func (be *Backend) core(name string) (core *engine.Core, err error) {
	be.mutex.Lock()
	defer be.mutex.Unlock()

	index := slices.IndexFunc(be.cores, func(c *engine.Core) bool { return c.Name() == name })
	if index < 0 {
		err = fmt.Errorf("%w: %q", ErrEngineMissing, name)
		return
	}

	core = be.cores[index]
	return
}

// Fired returns how often the n'th junction fired in the current run.
func (be *Backend) Fired(junction int) uint64 {
	be.mutex.Lock()
	b := be.barrier
	be.mutex.Unlock()

	if b == nil {
		return 0
	}
	return b.Fired(junction)
}

// Stats are the counters of a stopped core.
type Stats struct {
	Ip       int
	Clock    int64
	Ticks    int
	Jumps    int
	Timeouts int
	Status   engine.Status
}

// Stats returns an engine's counters. Only valid while no run is active.
func (be *Backend) Stats(name string) (stats Stats, err error) {
	be.mutex.Lock()
	running := be.cancel != nil
	done := be.done
	be.mutex.Unlock()

	if running {
		select {
		case <-done:
		default:
			err = ErrRunning
			return
		}
	}

	core, err := be.core(name)
	if err != nil {
		return
	}

	stats = Stats{
		Ip:       core.Ip,
		Clock:    core.Clock,
		Ticks:    core.Ticks,
		Jumps:    core.Jumps,
		Timeouts: core.Timeouts,
		Status:   core.Status(),
	}
	return
}
