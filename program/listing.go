package program

import (
	"bufio"
	"fmt"
	"io"
)

// Listing writes a human readable dump of the compiled program.
func (comp *Compiled) Listing(w io.Writer) (err error) {
	out := bufio.NewWriter(w)

	fmt.Fprintf(out, "resources:\n")
	for res := range comp.Resources.All() {
		fmt.Fprintf(out, "\t%v\n", res)
	}

	for _, ce := range comp.Engines {
		eng := ce.Engine
		mod := eng.module
		fmt.Fprintf(out, "engine %v: %v chassis%d slot%d\n", eng.name, mod.Kind(), mod.Chassis(), mod.Slot())
		for _, reg := range eng.registers {
			fmt.Fprintf(out, "\tregister %v %v = %d\n", reg.name, reg.width, reg.initial)
		}
		for _, ev := range eng.events {
			fmt.Fprintf(out, "\tevent %v = %v\n", ev.name, ev.id)
		}
		for _, act := range eng.actions {
			fmt.Fprintf(out, "\taction %v = %v\n", act.name, act.id)
		}
		for _, step := range ce.Steps {
			fmt.Fprintf(out, "\t%v", step.Instruction)
			if step.Target >= 0 {
				fmt.Fprintf(out, " -> %04d", step.Target)
			}
			fmt.Fprintf(out, "\n")
		}
	}

	for _, jn := range comp.Program.junctions {
		for _, rs := range jn.shares {
			fmt.Fprintf(out, "share %v/%v: %v[%d] ->", jn.name, rs.name, rs.source, rs.bits)
			for _, dest := range rs.dests {
				fmt.Fprintf(out, " %v", dest)
			}
			fmt.Fprintf(out, "\n")
		}
	}

	err = out.Flush()
	return
}
