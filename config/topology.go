package config

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/lockstep/fsm"
	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
	"github.com/ezrec/lockstep/script"
)

// timingField maps a state name to its budget in a Timing.
func timingField(tm *fsm.Timing) map[string]*int64 {
	return map[string]*int64{
		"wait":         &tm.Wait,
		"read":         &tm.Read,
		"share":        &tm.Share,
		"reset":        &tm.Reset,
		"queue":        &tm.Queue,
		"queue_done":   &tm.QueueDone,
		"trigger":      &tm.Trigger,
		"increment":    &tm.Increment,
		"jump":         &tm.Jump,
		"end":          &tm.End,
		"wait_timeout": &tm.WaitTimeoutNs,
	}
}

// Timing evaluates budget expressions over the default timing.
func Timing(exprs map[string]string) (tm fsm.Timing, err error) {
	tm = fsm.DefaultTiming()

	fields := timingField(&tm)
	vars := map[string]int64{
		"CLOCK_NS": program.CLOCK_PERIOD_NS,
		"FOREVER":  program.WAIT_FOREVER,
	}
	for name, ptr := range fields {
		vars[strings.ToUpper(name)] = *ptr
	}

	for _, name := range slices.Sorted(maps.Keys(exprs)) {
		ptr, ok := fields[strings.ToLower(name)]
		if !ok {
			err = &ErrField{Field: "timing." + name, Err: ErrTiming}
			return
		}
		*ptr, err = script.EvalInt(exprs[name], vars)
		if err != nil {
			err = &ErrField{Field: "timing." + name, Err: fmt.Errorf("%w: %w", ErrTiming, err)}
			return
		}
	}

	return
}

func orString(value, def string) string {
	if len(value) == 0 {
		return def
	}
	return value
}

func orInt(value *int, def int) int {
	if value == nil {
		return def
	}
	return *value
}

// Topology returns the loop topology: Default's values overridden by the
// file's.
func (file *File) Topology() (top fsm.Topology, err error) {
	top = fsm.DefaultTopology()

	if len(file.Chassis) != 0 {
		top.Chassis = slices.Clone(file.Chassis)
	}
	if len(file.Clocks) != 0 {
		top.Clocks = slices.Clone(file.Clocks)
	}
	if len(file.SyncResources) != 0 {
		top.SyncResources = nil
		for _, name := range file.SyncResources {
			var line hw.TriggerLine
			line, err = hw.ParseTriggerLine(name)
			if err != nil {
				err = &ErrField{Field: "sync_resources", Err: err}
				return
			}
			top.SyncResources = append(top.SyncResources, line)
		}
	}

	lp := file.Loop
	if lp == nil {
		return
	}

	top.Master = orString(lp.Master, top.Master)
	if len(lp.Workers) != 0 {
		top.Workers = slices.Clone(lp.Workers)
	}
	top.CycleCount = orString(lp.CycleCount, top.CycleCount)
	top.FSMValues = orString(lp.FSMValues, top.FSMValues)
	top.Counter = orString(lp.Counter, top.Counter)
	top.Quit = orString(lp.Quit, top.Quit)
	top.Wavenum = orString(lp.Wavenum, top.Wavenum)
	top.InitialCounter = uint32(orInt(lp.InitialCounter, int(top.InitialCounter)))
	top.BitsToShare = orInt(lp.BitsToShare, top.BitsToShare)
	top.Sandbox = orString(lp.Sandbox, top.Sandbox)
	top.DataRegister = orString(lp.DataRegister, top.DataRegister)
	top.EventRegister = orString(lp.EventRegister, top.EventRegister)

	if len(lp.DataReady) != 0 {
		top.DataReady, err = hw.ParseEvent(lp.DataReady)
		if err != nil {
			err = &ErrField{Field: "data_ready", Err: err}
			return
		}
	}
	for _, item := range []struct {
		field string
		name  string
		id    *hw.ActionID
	}{
		{"reset_action", lp.ResetAction, &top.ResetAction},
		{"user_action", lp.UserAction, &top.UserAction},
	} {
		if len(item.name) == 0 {
			continue
		}
		*item.id, err = hw.ParseAction(item.name)
		if err != nil {
			err = &ErrField{Field: item.field, Err: err}
			return
		}
	}

	if len(lp.Trigger) != 0 {
		top.Queue.Trigger, err = hw.ParseTriggerMode(lp.Trigger)
		if err != nil {
			err = &ErrField{Field: "trigger", Err: err}
			return
		}
	}
	top.Queue.StartDelay = orInt(lp.StartDelay, top.Queue.StartDelay)
	top.Queue.Cycles = orInt(lp.Cycles, top.Queue.Cycles)
	top.Queue.Prescaler = orInt(lp.Prescaler, top.Queue.Prescaler)

	top.Timing, err = Timing(lp.Timing)
	return
}

// Descriptors returns the module descriptors, or Default's when the file
// declares none.
func (file *File) Descriptors() (descs []hw.ModuleDescriptor, err error) {
	modules := file.Modules
	if len(modules) == 0 {
		modules = Default().Modules
	}

	for n, mod := range modules {
		var kind hw.ModuleKind
		kind, err = hw.ParseModuleKind(mod.Kind)
		if err != nil {
			err = &ErrField{Field: fmt.Sprintf("modules[%d]", n), Err: err}
			return
		}
		if len(mod.Name) == 0 || mod.Slot <= 0 {
			err = &ErrField{Field: fmt.Sprintf("modules[%d]", n), Err: ErrModule}
			return
		}
		chassis := mod.Chassis
		if chassis == 0 {
			chassis = 1
		}
		descs = append(descs, hw.ModuleDescriptor{
			Name:     mod.Name,
			Kind:     kind,
			Chassis:  chassis,
			Slot:     mod.Slot,
			Channels: mod.Channels,
		})
	}

	return
}

// sandbox returns the descriptor a module's sandbox is loaded with.
func (file *File) sandbox(mod Module) (desc *hw.SandboxDescriptor, err error) {
	var filesys fs.FS = sandboxFS
	path := DEFAULT_SANDBOX
	if len(mod.Sandbox) != 0 {
		if file.Dir == nil {
			err = &ErrField{Field: mod.Name + ".sandbox", Err: fs.ErrNotExist}
			return
		}
		filesys = file.Dir
		path = mod.Sandbox
	}

	return hw.LoadSandboxFS(filesys, path)
}

// Open creates simulated modules, loading every digitizer sandbox with its
// descriptor.
func (file *File) Open() (mods []*hw.SimModule, err error) {
	descs, err := file.Descriptors()
	if err != nil {
		return
	}

	modules := file.Modules
	if len(modules) == 0 {
		modules = Default().Modules
	}

	mods = hw.OpenSim(descs)
	for n, mod := range mods {
		if mod.Kind() != hw.MODULE_DIGITIZER && len(modules[n].Sandbox) == 0 {
			continue
		}
		var desc *hw.SandboxDescriptor
		desc, err = file.sandbox(modules[n])
		if err != nil {
			mods = nil
			return
		}
		sb, ok := mod.SimSandbox(hw.SANDBOX_DEFAULT)
		if !ok {
			sb = mod.AddSandbox(hw.SANDBOX_DEFAULT)
		}
		sb.Load(desc)
	}

	return
}
