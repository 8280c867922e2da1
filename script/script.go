package script

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

// Script builds a program from Starlark source.
type Script struct {
	Verbose bool
	Logger  *zap.Logger

	// Modules available to engine(), by name.
	Modules map[string]hw.Module
	// Predeclared values beyond the builtins.
	Predeclared starlark.StringDict
}

// New returns a Script over the modules, keyed by module name.
func New(modules ...hw.Module) (sc *Script) {
	sc = &Script{Modules: map[string]hw.Module{}}
	for _, mod := range modules {
		sc.Modules[mod.Name()] = mod
	}
	return
}

// Build executes the script and returns the program it declared. src is
// anything starlark.ExecFileOptions accepts; nil reads filename.
func (sc *Script) Build(filename string, src any) (prog *program.Program, err error) {
	log := sc.Logger
	if log == nil {
		log = zap.NewNop()
	}

	bld := &builder{
		prog:    program.New(),
		modules: sc.Modules,
	}

	pred := bld.builtins()
	for key, val := range sc.Predeclared {
		pred[key] = val
	}

	thread := starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			log.Info(msg, zap.String("script", filename))
		},
	}
	opts := syntax.FileOptions{}

	_, err = starlark.ExecFileOptions(&opts, &thread, filename, src, pred)
	if err != nil {
		return
	}

	if sc.Verbose {
		log.Debug("script built",
			zap.String("script", filename),
			zap.Int("engines", len(bld.prog.Engines())),
			zap.Int("junctions", len(bld.prog.Junctions())),
		)
	}

	prog = bld.prog
	return
}

// builder holds the program under construction.
type builder struct {
	prog    *program.Program
	modules map[string]hw.Module
}

type builtinFunc func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

func (bld *builder) builtins() starlark.StringDict {
	dict := starlark.StringDict{
		"WAIT_FOREVER": starlark.MakeInt64(program.WAIT_FOREVER),
		"START":        starlark.String(program.LABEL_START),
	}

	for name, fn := range map[string]builtinFunc{
		"engine":         bld.doEngine,
		"register":       bld.doRegister,
		"event":          bld.doEvent,
		"action":         bld.doAction,
		"wait_event":     bld.doWaitEvent,
		"read":           bld.doRead,
		"execute":        bld.doExecute,
		"alu":            bld.doAlu,
		"jump":           bld.doJump,
		"end":            bld.doEnd,
		"queue":          bld.doQueue,
		"junction":       bld.doJunction,
		"share":          bld.doShare,
		"global_jump":    bld.doGlobalJump,
		"global_end":     bld.doGlobalEnd,
		"chassis":        bld.doChassis,
		"sync_resources": bld.doSyncResources,
		"clocks":         bld.doClocks,
	} {
		dict[name] = starlark.NewBuiltin(name, fn)
	}

	return dict
}

func (bld *builder) engine(name string) (eng *program.Engine, err error) {
	eng, ok := bld.prog.Engine(name)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrEngineMissing, name)
	}
	return
}

func registerOf(eng *program.Engine, name string) (reg *program.Register, err error) {
	reg, ok := eng.Register(name)
	if !ok {
		err = fmt.Errorf("%w: %v.%v", ErrRegisterMissing, eng.Name(), name)
	}
	return
}

// qualified resolves an "engine.register" name.
func (bld *builder) qualified(ref string) (reg *program.Register, err error) {
	engine, name, ok := strings.Cut(ref, ".")
	if !ok {
		err = fmt.Errorf("%w: %q", ErrRegisterMissing, ref)
		return
	}
	eng, err := bld.engine(engine)
	if err != nil {
		return
	}
	return registerOf(eng, name)
}

// operand converts an int to an immediate and a string to a register.
func operand(eng *program.Engine, val starlark.Value) (op program.Operand, err error) {
	switch v := val.(type) {
	case starlark.Int:
		imm, ok := v.Uint64()
		if !ok || imm > 0xffffffff {
			err = fmt.Errorf("%w: %v", ErrOperand, v)
			return
		}
		op = program.Imm(uint32(imm))
	case starlark.String:
		var reg *program.Register
		reg, err = registerOf(eng, string(v))
		op = program.Reg(reg)
	default:
		err = fmt.Errorf("%w: %v", ErrOperand, val.Type())
	}
	return
}

// stringList collects the strings of a list or tuple.
func stringList(seq starlark.Iterable) (list []string, err error) {
	iter := seq.Iterate()
	defer iter.Done()

	var val starlark.Value
	for iter.Next(&val) {
		str, ok := starlark.AsString(val)
		if !ok {
			err = fmt.Errorf("%w: %v", ErrOperand, val)
			return
		}
		list = append(list, str)
	}
	return
}

// stepArgs unpacks the engine, label and time that lead every instruction.
type stepArgs struct {
	engine string
	label  string
	time   int
}

func (sa *stepArgs) pairs(more ...any) []any {
	return append([]any{"engine", &sa.engine, "label", &sa.label, "time", &sa.time}, more...)
}

func (bld *builder) doEngine(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var name, module string
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "module", &module)
	if err != nil {
		return
	}

	mod, ok := bld.modules[module]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrModuleMissing, module)
		return
	}

	_, err = bld.prog.AddEngine(mod, name)
	if err != nil {
		return
	}

	val = starlark.String(name)
	return
}

func (bld *builder) doRegister(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var engine, name string
	width := "long"
	initial := starlark.MakeInt(0)
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "engine", &engine, "name", &name, "width?", &width, "initial?", &initial)
	if err != nil {
		return
	}

	eng, err := bld.engine(engine)
	if err != nil {
		return
	}
	w, err := program.ParseWidth(width)
	if err != nil {
		return
	}
	value, ok := initial.Uint64()
	if !ok || value > 0xffffffff {
		err = fmt.Errorf("%w: initial %v", ErrOperand, initial)
		return
	}

	_, err = eng.AddRegister(name, w, uint32(value))
	if err != nil {
		return
	}

	val = starlark.String(name)
	return
}

func (bld *builder) doEvent(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var engine, name, id string
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "engine", &engine, "name", &name, "id", &id)
	if err != nil {
		return
	}

	eng, err := bld.engine(engine)
	if err != nil {
		return
	}
	ev, err := hw.ParseEvent(id)
	if err != nil {
		return
	}

	_, err = eng.BindEvent(ev, name)
	if err != nil {
		return
	}

	val = starlark.String(name)
	return
}

func (bld *builder) doAction(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var engine, name, id string
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "engine", &engine, "name", &name, "id", &id)
	if err != nil {
		return
	}

	eng, err := bld.engine(engine)
	if err != nil {
		return
	}
	act, err := hw.ParseAction(id)
	if err != nil {
		return
	}

	_, err = eng.BindAction(act, name)
	if err != nil {
		return
	}

	val = starlark.String(name)
	return
}

func (bld *builder) doWaitEvent(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	var event string
	mode := "to_active"
	timeout := int(program.WAIT_FOREVER)
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs("event", &event, "mode?", &mode, "timeout?", &timeout)...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}
	ev, ok := eng.Event(event)
	if !ok {
		err = fmt.Errorf("%w: %v.%v", ErrEventMissing, sa.engine, event)
		return
	}
	em, err := program.ParseEventMode(mode)
	if err != nil {
		return
	}

	_, err = eng.Sequence().AddWaitEvent(sa.label, int64(sa.time), ev, em, int64(timeout))
	val = starlark.None
	return
}

func (bld *builder) doRead(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	var dest, source string
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs("dest", &dest, "source", &source)...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}
	reg, err := registerOf(eng, dest)
	if err != nil {
		return
	}

	var src program.Source
	if sandbox, name, ok := strings.Cut(source, "/"); ok {
		src = program.SandboxRef{Sandbox: sandbox, Register: name}
	} else {
		src, err = registerOf(eng, source)
		if err != nil {
			return
		}
	}

	_, err = eng.Sequence().AddRead(sa.label, int64(sa.time), reg, src)
	val = starlark.None
	return
}

func (bld *builder) doExecute(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	var names starlark.Iterable
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs("actions", &names)...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}
	list, err := stringList(names)
	if err != nil {
		return
	}

	actions := make([]*program.Action, len(list))
	for n, name := range list {
		var ok bool
		actions[n], ok = eng.Action(name)
		if !ok {
			err = fmt.Errorf("%w: %v.%v", ErrActionMissing, sa.engine, name)
			return
		}
	}

	_, err = eng.Sequence().AddAction(sa.label, int64(sa.time), actions...)
	val = starlark.None
	return
}

func (bld *builder) doAlu(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	var op, result string
	var left, right starlark.Value
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs("op", &op, "left", &left, "right", &right, "result", &result)...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}
	aluOp, err := program.ParseAluOp(op)
	if err != nil {
		return
	}
	lhs, err := operand(eng, left)
	if err != nil {
		return
	}
	rhs, err := operand(eng, right)
	if err != nil {
		return
	}
	res, err := registerOf(eng, result)
	if err != nil {
		return
	}

	_, err = eng.Sequence().AddArithmetic(sa.label, int64(sa.time), aluOp, lhs, rhs, res)
	val = starlark.None
	return
}

func (bld *builder) doJump(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	var target string
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs("target", &target)...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}

	_, err = eng.Sequence().AddJump(sa.label, int64(sa.time), target)
	val = starlark.None
	return
}

func (bld *builder) doEnd(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs()...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}

	_, err = eng.Sequence().AddEnd(sa.label, int64(sa.time))
	val = starlark.None
	return
}

func (bld *builder) doQueue(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var sa stepArgs
	var channel int
	var waveform starlark.Value
	trigger := "sw_hvi"
	var queue hw.Queue
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, sa.pairs(
		"channel", &channel,
		"waveform", &waveform,
		"trigger?", &trigger,
		"delay?", &queue.StartDelay,
		"cycles?", &queue.Cycles,
		"prescaler?", &queue.Prescaler,
	)...)
	if err != nil {
		return
	}

	eng, err := bld.engine(sa.engine)
	if err != nil {
		return
	}
	wave, err := operand(eng, waveform)
	if err != nil {
		return
	}
	queue.Trigger, err = hw.ParseTriggerMode(trigger)
	if err != nil {
		return
	}

	_, err = eng.Sequence().AddQueueWaveform(sa.label, int64(sa.time), channel, wave, queue)
	val = starlark.None
	return
}

func (bld *builder) doJunction(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var name string
	var time int
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "time", &time)
	if err != nil {
		return
	}

	_, err = bld.prog.AddJunction(name, int64(time))
	if err != nil {
		return
	}

	val = starlark.String(name)
	return
}

func (bld *builder) doShare(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var junction, name, source string
	var bits int
	var names starlark.Iterable
	err = starlark.UnpackArgs(fn.Name(), args, kwargs,
		"junction", &junction, "name", &name, "source", &source, "bits", &bits, "dests", &names)
	if err != nil {
		return
	}

	jn, ok := bld.prog.Junction(junction)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrJunctionMissing, junction)
		return
	}
	src, err := bld.qualified(source)
	if err != nil {
		return
	}
	list, err := stringList(names)
	if err != nil {
		return
	}

	dests := make([]*program.Register, len(list))
	for n, ref := range list {
		dests[n], err = bld.qualified(ref)
		if err != nil {
			return
		}
	}

	_, err = jn.Share(name, src, bits, dests)
	val = starlark.None
	return
}

func (bld *builder) doGlobalJump(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var name, target string
	var time int
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "time", &time, "target", &target)
	if err != nil {
		return
	}

	err = bld.prog.AddGlobalJump(name, int64(time), target)
	val = starlark.None
	return
}

func (bld *builder) doGlobalEnd(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var name string
	var time int
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "time", &time)
	if err != nil {
		return
	}

	err = bld.prog.AddGlobalEnd(name, int64(time))
	val = starlark.None
	return
}

func (bld *builder) doChassis(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var list *starlark.List
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "numbers", &list)
	if err != nil {
		return
	}

	numbers := make([]int, list.Len())
	for n := range numbers {
		numbers[n], err = starlark.AsInt32(list.Index(n))
		if err != nil {
			return
		}
	}

	err = bld.prog.AddChassis(numbers...)
	val = starlark.None
	return
}

func (bld *builder) doSyncResources(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var names starlark.Iterable
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "lines", &names)
	if err != nil {
		return
	}

	list, err := stringList(names)
	if err != nil {
		return
	}

	lines := make([]hw.TriggerLine, len(list))
	for n, name := range list {
		lines[n], err = hw.ParseTriggerLine(name)
		if err != nil {
			return
		}
	}

	err = bld.prog.SetSyncResources(lines...)
	val = starlark.None
	return
}

func (bld *builder) doClocks(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, err error) {
	var list *starlark.List
	err = starlark.UnpackArgs(fn.Name(), args, kwargs, "hz", &list)
	if err != nil {
		return
	}

	clocks := make([]float64, list.Len())
	for n := range clocks {
		hz, ok := starlark.AsFloat(list.Index(n))
		if !ok {
			err = fmt.Errorf("%w: clock %v", ErrOperand, list.Index(n))
			return
		}
		clocks[n] = hz
	}

	err = bld.prog.SetNonNativeClocks(clocks...)
	val = starlark.None
	return
}
