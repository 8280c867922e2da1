// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package fsm

import (
	"fmt"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

// Loop is the built control loop program and its named parts.
type Loop struct {
	Topology Topology
	Program  *program.Program

	Master  *program.Engine
	Workers []*program.Engine

	CycleCount *program.Register
	FSMValues  *program.Register
	Counter    *program.Register
	Quit       *program.Register // Host bookkeeping only: no instruction tests it.
	Wavenum    []*program.Register

	DataReady   *program.Event
	ResetAction *program.Action
	Triggers    [][]*program.Action // AWG trigger actions per worker.

	Share *program.RegisterShare
}

// workerName names the n'th worker engine.
func (top *Topology) workerName(n int, mod hw.Module) string {
	if n < len(top.Workers) {
		return top.Workers[n]
	}
	return mod.Name()
}

// Build creates the control loop program. The first module is the master
// digitizer; every other module is an AWG worker.
//
//	Start -> WaitForEvent -> ReadValue -> Sync+Share -> ResetSignal ->
//	QueueWork(per worker, per channel) -> Sync -> TriggerAll ->
//	IncrementCounter -> Jump Start
func Build(top Topology, modules []hw.Module) (loop *Loop, err error) {
	if len(modules) < 2 {
		err = ErrNoWorkers
		return
	}
	if modules[0].Kind() != hw.MODULE_DIGITIZER {
		err = fmt.Errorf("%w: %v", ErrMasterKind, modules[0].Name())
		return
	}
	for _, mod := range modules[1:] {
		if mod.Kind() != hw.MODULE_AWG {
			err = fmt.Errorf("%w: %v", ErrWorkerKind, mod.Name())
			return
		}
	}

	tm := top.Timing
	prog := program.New()
	lp := &Loop{Topology: top, Program: prog}

	lp.Master, err = prog.AddEngine(modules[0], top.Master)
	if err != nil {
		return
	}
	for n, mod := range modules[1:] {
		var eng *program.Engine
		eng, err = prog.AddEngine(mod, top.workerName(n, mod))
		if err != nil {
			return
		}
		lp.Workers = append(lp.Workers, eng)
	}

	// Registers
	master := lp.Master
	for _, item := range []struct {
		reg     **program.Register
		name    string
		initial uint32
	}{
		{&lp.CycleCount, top.CycleCount, 0},
		{&lp.FSMValues, top.FSMValues, 0},
		{&lp.Counter, top.Counter, top.InitialCounter},
		{&lp.Quit, top.Quit, 0},
	} {
		*item.reg, err = master.AddRegister(item.name, program.WIDTH_SHORT, item.initial)
		if err != nil {
			return
		}
	}
	for _, worker := range lp.Workers {
		var reg *program.Register
		reg, err = worker.AddRegister(top.Wavenum, program.WIDTH_SHORT, 0)
		if err != nil {
			return
		}
		lp.Wavenum = append(lp.Wavenum, reg)
	}

	// Events and actions
	lp.DataReady, err = master.BindEvent(top.DataReady, fmt.Sprintf("FpgaUserEvent%d", int(top.DataReady)))
	if err != nil {
		return
	}
	_, err = master.BindAction(top.UserAction, fmt.Sprintf("FpgaUserAction%d", int(top.UserAction)))
	if err != nil {
		return
	}
	lp.ResetAction, err = master.BindAction(top.ResetAction, fmt.Sprintf("FpgaUserAction%d", int(top.ResetAction)))
	if err != nil {
		return
	}
	for _, worker := range lp.Workers {
		var triggers []*program.Action
		for channel := 1; channel <= min(worker.Module().Channels(), hw.AWG_TRIGGER_MAX); channel++ {
			var act *program.Action
			act, err = worker.BindAction(hw.AwgTrigger(channel), fmt.Sprintf("AwgTrigger%d", channel))
			if err != nil {
				return
			}
			triggers = append(triggers, act)
		}
		lp.Triggers = append(lp.Triggers, triggers)
	}

	ms := master.Sequence()

	// Wait for data ready
	_, err = ms.AddWaitEvent("Wait for "+lp.DataReady.Name(), tm.Wait, lp.DataReady, program.EVENT_TO_ACTIVE, tm.WaitTimeoutNs)
	if err != nil {
		return
	}

	// Read data value from the sandbox
	_, err = ms.AddRead("Read Waveform Number", tm.Read, lp.FSMValues, program.SandboxRef{Sandbox: top.Sandbox, Register: top.DataRegister})
	if err != nil {
		return
	}

	// Sync junction with register share
	jn, err := prog.AddJunction("GlobalJunction", tm.Share)
	if err != nil {
		return
	}
	lp.Share, err = jn.Share("regSharing", lp.FSMValues, top.BitsToShare, lp.Wavenum)
	if err != nil {
		return
	}

	// Reset the FPGA state machine for the next cycle
	_, err = ms.AddAction("Reset FSM", tm.Reset, lp.ResetAction)
	if err != nil {
		return
	}

	// Queue waveforms in the AWGs
	for n, worker := range lp.Workers {
		seq := worker.Sequence()
		for channel := 1; channel <= worker.Module().Channels(); channel++ {
			_, err = seq.AddQueueWaveform(fmt.Sprintf("awgQueueWaveform%d", channel), tm.Queue, channel, program.Reg(lp.Wavenum[n]), top.Queue)
			if err != nil {
				return
			}
		}
	}

	// Re-sync after queueing
	_, err = prog.AddJunction("QueueWfmDone", tm.QueueDone)
	if err != nil {
		return
	}

	// Trigger all the AWGs
	for n, worker := range lp.Workers {
		if len(lp.Triggers[n]) == 0 {
			continue
		}
		_, err = worker.Sequence().AddAction("AWG trigger", tm.Trigger, lp.Triggers[n]...)
		if err != nil {
			return
		}
	}

	// Count the cycle
	_, err = ms.AddArithmetic("cycleCount++", tm.Increment, program.ALU_ADD, program.Imm(1), program.Reg(lp.CycleCount), lp.CycleCount)
	if err != nil {
		return
	}

	err = prog.AddGlobalJump("jumpStatement", tm.Jump, program.LABEL_START)
	if err != nil {
		return
	}
	err = prog.AddGlobalEnd("EndOfSequence", tm.End)
	if err != nil {
		return
	}

	if len(top.Chassis) > 0 {
		err = prog.AddChassis(top.Chassis...)
		if err != nil {
			return
		}
	}
	err = prog.SetSyncResources(top.SyncResources...)
	if err != nil {
		return
	}
	err = prog.SetNonNativeClocks(top.Clocks...)
	if err != nil {
		return
	}

	loop = lp
	return
}
