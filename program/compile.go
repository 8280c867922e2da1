// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package program

import (
	"fmt"
	"math"
	"slices"

	"github.com/ezrec/lockstep/hw"
)

// Compile validates and links a program. Checks run in a fixed order and
// the first violation is returned:
//
//   - the program has engines
//   - per engine, in declaration order: time budgets, operand ownership,
//     module support and bound events, sandbox references, labels,
//     junction crossing
//   - junction symmetry across engines, including local ends before the
//     last junction
//   - global jump alignment
//   - register shares
//   - sync resources
//
// A successful compile freezes the program.
func Compile(prog *Program) (comp *Compiled, err error) {
	if len(prog.engines) == 0 {
		err = &CompileError{Kind: COMPILE_EMPTY, Detail: prog.ID.String()}
		return
	}

	out := &Compiled{Program: prog}
	for _, eng := range prog.engines {
		var ce *CompiledEngine
		ce, err = compileEngine(eng)
		if err != nil {
			return
		}
		out.Engines = append(out.Engines, ce)
	}

	if err = checkJunctions(prog, out.Engines); err != nil {
		return
	}
	if err = checkGlobalJumps(out.Engines); err != nil {
		return
	}
	if err = checkShares(prog); err != nil {
		return
	}

	out.Resources, err = allocate(prog)
	if err != nil {
		return
	}

	prog.phase = PHASE_COMPILED
	comp = out
	return
}

func compileEngine(eng *Engine) (ce *CompiledEngine, err error) {
	fail := func(kind CompileKind, in *Instruction, format string, args ...any) error {
		detail := fmt.Sprintf(format, args...)
		if in != nil {
			detail = fmt.Sprintf("%04d %v: %v", in.index, in.Opcode(), detail)
		}
		return &CompileError{Kind: kind, Engine: eng.name, Detail: detail}
	}

	seq := &eng.sequence
	for _, in := range seq.instructions {
		if in.timeNs < in.Opcode().MinTimeNs() || in.timeNs%CLOCK_PERIOD_NS != 0 {
			err = fail(COMPILE_TIME_BUDGET, in, "%dns", in.timeNs)
			return
		}
		if wait, ok := in.op.(WaitEvent); ok && wait.TimeoutNs != WAIT_FOREVER && wait.TimeoutNs < 0 {
			err = fail(COMPILE_TIME_BUDGET, in, "timeout %dns", wait.TimeoutNs)
			return
		}
	}

	for _, in := range seq.instructions {
		for _, operand := range in.op.operands() {
			if operand.Engine() != eng {
				err = fail(COMPILE_REGISTER_OWNER, in, "%v", operand)
				return
			}
		}
	}

	for _, in := range seq.instructions {
		queue, ok := in.op.(QueueWaveform)
		if !ok {
			continue
		}
		if eng.module.Kind() != hw.MODULE_AWG {
			err = fail(COMPILE_MODULE, in, "%v", eng.module.Kind())
			return
		}
		if queue.Channel < 1 || queue.Channel > eng.module.Channels() {
			err = fail(COMPILE_MODULE, in, "channel %d", queue.Channel)
			return
		}
	}

	for _, ev := range eng.events {
		if eng.module.Event(ev.id) == nil {
			err = fail(COMPILE_MODULE, nil, "event %v: %v", ev.name, ev.id)
			return
		}
	}

	for _, in := range seq.instructions {
		read, ok := in.op.(RegisterRead)
		if !ok {
			continue
		}
		ref, ok := read.Source.(SandboxRef)
		if !ok {
			continue
		}
		sb, sberr := eng.module.Sandbox(ref.Sandbox)
		switch {
		case sberr != nil:
			err = fail(COMPILE_SANDBOX, in, "%v", ref)
		case !sb.Loaded():
			err = fail(COMPILE_SANDBOX, in, "%v: %v", ref, hw.ErrSandboxNotLoaded)
		default:
			if _, found := sb.Lookup(ref.Register); !found {
				err = fail(COMPILE_SANDBOX, in, "%v: %v", ref, hw.ErrRegisterMissing)
			}
		}
		if err != nil {
			return
		}
	}

	labels := map[string]int{}
	if seq.Len() > 0 {
		labels[LABEL_START] = 0
	}
	for _, in := range seq.instructions {
		if len(in.label) == 0 {
			continue
		}
		if at, ok := labels[in.label]; ok && !(in.label == LABEL_START && at == 0 && in.index == 0) {
			err = fail(COMPILE_LABEL_DUPLICATE, in, "%q", in.label)
			return
		}
		labels[in.label] = in.index
	}

	steps := make([]Step, seq.Len())
	segment := 0
	for n, in := range seq.instructions {
		steps[n] = Step{Instruction: in, Target: -1, Junction: -1, Segment: segment}
		if sync, ok := in.op.(Sync); ok {
			steps[n].Junction = sync.Junction.index
			segment++
		}
	}

	// Linking of jump labels
	for n, step := range steps {
		jump, ok := step.op.(Jump)
		if !ok {
			continue
		}
		target, ok := labels[jump.Target]
		if !ok {
			err = fail(COMPILE_LABEL_MISSING, step.Instruction, "%q", jump.Target)
			return
		}
		steps[n].Target = target
		if !jump.Global && steps[target].Segment != step.Segment {
			err = fail(COMPILE_JUNCTION_CROSSED, step.Instruction, "%q", jump.Target)
			return
		}
	}

	ce = &CompiledEngine{
		Engine: eng,
		Steps:  steps,
		labels: labels,
	}
	return
}

// checkJunctions requires every engine to pass every junction exactly once,
// in declaration order. An engine may only end locally after the last
// junction, as its peers would otherwise wait at the next one forever.
func checkJunctions(prog *Program, engines []*CompiledEngine) error {
	for _, ce := range engines {
		var seen []int
		for _, step := range ce.Steps {
			if step.Junction >= 0 {
				seen = append(seen, step.Junction)
			}
		}
		if len(seen) != len(prog.junctions) {
			return &CompileError{
				Kind:   COMPILE_JUNCTION_ASYMMETRIC,
				Engine: ce.Engine.name,
				Detail: fmt.Sprintf("%d of %d junctions", len(seen), len(prog.junctions)),
			}
		}
		for n, index := range seen {
			if index != n {
				return &CompileError{
					Kind:   COMPILE_JUNCTION_ASYMMETRIC,
					Engine: ce.Engine.name,
					Detail: fmt.Sprintf("%q out of order", prog.junctions[index].name),
				}
			}
		}
		for _, step := range ce.Steps {
			end, ok := step.op.(End)
			if !ok || end.Global || step.Segment >= len(prog.junctions) {
				continue
			}
			return &CompileError{
				Kind:   COMPILE_JUNCTION_ASYMMETRIC,
				Engine: ce.Engine.name,
				Detail: fmt.Sprintf("%04d end before %q", step.index, prog.junctions[step.Segment].name),
			}
		}
	}
	return nil
}

// checkGlobalJumps requires the n'th global jump of every engine to land in
// the same junction segment.
func checkGlobalJumps(engines []*CompiledEngine) error {
	globals := make([][]Step, len(engines))
	for n, ce := range engines {
		for _, step := range ce.Steps {
			if jump, ok := step.op.(Jump); ok && jump.Global {
				globals[n] = append(globals[n], step)
			}
		}
	}

	first := engines[0]
	for n, ce := range engines[1:] {
		list := globals[n+1]
		if len(list) != len(globals[0]) {
			return &CompileError{
				Kind:   COMPILE_JUNCTION_ASYMMETRIC,
				Engine: ce.Engine.name,
				Detail: fmt.Sprintf("%d global jumps, %v has %d", len(list), first.Engine.name, len(globals[0])),
			}
		}
		for m, step := range list {
			want := globals[0][m]
			if step.Segment != want.Segment || ce.Steps[step.Target].Segment != first.Steps[want.Target].Segment {
				return &CompileError{
					Kind:   COMPILE_JUNCTION_CROSSED,
					Engine: ce.Engine.name,
					Detail: fmt.Sprintf("global %q", step.label),
				}
			}
		}
	}

	return nil
}

func checkShares(prog *Program) error {
	for _, jn := range prog.junctions {
		written := map[*Register]bool{}
		for _, rs := range jn.shares {
			kind, what, ok := checkShare(prog, rs.source, rs.bits, rs.dests)
			if !ok {
				return &CompileError{
					Kind:   COMPILE_SHARE,
					Engine: rs.source.engine.name,
					Detail: fmt.Sprintf("%v/%v: %v: %v", jn.name, rs.name, what, configKindErr[kind]),
				}
			}
			for _, dest := range rs.dests {
				if written[dest] {
					return &CompileError{
						Kind:   COMPILE_SHARE,
						Engine: dest.engine.name,
						Detail: fmt.Sprintf("%v/%v: %v written twice", jn.name, rs.name, dest),
					}
				}
				written[dest] = true
			}
		}
	}
	return nil
}

func allocate(prog *Program) (res Resources, err error) {
	fail := func(format string, args ...any) error {
		return &CompileError{Kind: COMPILE_RESOURCES, Detail: fmt.Sprintf(format, args...)}
	}

	res.Chassis = slices.Clone(prog.chassis)
	if len(res.Chassis) == 0 {
		for _, eng := range prog.engines {
			res.Chassis = append(res.Chassis, eng.module.Chassis())
		}
	}
	slices.Sort(res.Chassis)
	res.Chassis = slices.Compact(res.Chassis)
	for _, eng := range prog.engines {
		if !slices.Contains(res.Chassis, eng.module.Chassis()) {
			err = fail("engine %v: chassis %d undeclared", eng.name, eng.module.Chassis())
			return
		}
	}

	lines := slices.Clone(prog.lines)
	for _, line := range lines {
		if !line.Valid() {
			err = fail("%v", line)
			return
		}
	}
	slices.Sort(lines)
	lines = slices.Compact(lines)

	for _, jn := range prog.junctions {
		if len(jn.shares) > 0 {
			res.HasData = true
			break
		}
	}

	needed := 1
	if res.HasData {
		needed = 2
	}
	if len(lines) < needed {
		err = fail("%d trigger lines, %d needed", len(lines), needed)
		return
	}

	res.Lines = lines[:needed]
	res.Barrier = lines[0]
	if res.HasData {
		res.Data = lines[1]
	}

	for _, hz := range prog.clocks {
		if !(hz > 0) || math.IsInf(hz, 0) {
			err = fail("clock %v Hz", hz)
			return
		}
	}
	res.Clocks = slices.Clone(prog.clocks)
	slices.Sort(res.Clocks)
	res.Clocks = slices.Compact(res.Clocks)

	return
}
