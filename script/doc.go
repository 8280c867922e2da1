// Package script builds programs from Starlark scripts.
//
// A script declares engines over named modules, then registers, bindings,
// instructions and junctions, by calling the predeclared builtins:
//
//	engine(name, module)
//	register(engine, name, width = "long", initial = 0)
//	event(engine, name, id)
//	action(engine, name, id)
//	wait_event(engine, label, time, event, mode = "to_active", timeout = WAIT_FOREVER)
//	read(engine, label, time, dest, source)
//	execute(engine, label, time, actions)
//	alu(engine, label, time, op, left, right, result)
//	jump(engine, label, time, target)
//	end(engine, label, time)
//	queue(engine, label, time, channel, waveform, trigger = "sw_hvi", delay = 0, cycles = 0, prescaler = 0)
//	junction(name, time)
//	share(junction, name, source, bits, dests)
//	global_jump(name, time, target)
//	global_end(name, time)
//	chassis(numbers)
//	sync_resources(lines)
//	clocks(hz)
//
// A read source containing a "/" is a sandbox register ("sandbox0/data"),
// otherwise a register of the same engine. Share registers are named
// "engine.register". ALU operands are an int (immediate) or a register name.
package script
