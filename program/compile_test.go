package program

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lockstep/hw"
)

func compileKind(err error) CompileKind {
	var compErr *CompileError
	if !errors.As(err, &compErr) {
		return CompileKind(-1)
	}
	return compErr.Kind
}

// buildLoop builds a digitizer/AWG loop with one sharing junction.
func buildLoop(t *testing.T) *Program {
	prog, master, worker := newPair(t)

	count, _ := master.AddRegister("count", WIDTH_LONG, 0)
	value, _ := master.AddRegister("value", WIDTH_SHORT, 0x12345)
	wave, _ := worker.AddRegister("wave", WIDTH_SHORT, 0)
	ev, _ := master.BindEvent(hw.FpgaUserEvent(4), "go")
	trig, _ := worker.BindAction(hw.AwgTrigger(1), "trig")

	ms := master.Sequence()
	ws := worker.Sequence()

	_, err := ms.AddWaitEvent("", 10, ev, EVENT_TO_ACTIVE, WAIT_FOREVER)
	assert.NoError(t, err)
	_, err = ms.AddRead("", 20, value, SandboxRef{Sandbox: hw.SANDBOX_DEFAULT, Register: "data"})
	assert.NoError(t, err)

	jn, err := prog.AddJunction("share", 100)
	assert.NoError(t, err)
	_, err = jn.Share("values", value, 16, []*Register{wave})
	assert.NoError(t, err)

	_, err = ws.AddQueueWaveform("", 10, 1, Reg(wave), hw.Queue{Trigger: hw.TRIGGER_SW_HVI})
	assert.NoError(t, err)
	_, err = ws.AddAction("", 10, trig)
	assert.NoError(t, err)
	_, err = ms.AddArithmetic("", 10, ALU_ADD, Reg(count), Imm(1), count)
	assert.NoError(t, err)

	assert.NoError(t, prog.AddGlobalJump("loop", 10, LABEL_START))
	assert.NoError(t, prog.AddGlobalEnd("done", 10))
	assert.NoError(t, prog.SetSyncResources(hw.TRIGGER_PXI3, hw.TRIGGER_PXI1, hw.TRIGGER_PXI3))
	assert.NoError(t, prog.SetNonNativeClocks(1e8))

	return prog
}

func TestCompile(t *testing.T) {
	assert := assert.New(t)

	comp, err := Compile(buildLoop(t))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(2, len(comp.Engines))

	master, ok := comp.Engine("master")
	assert.True(ok)
	assert.Equal(6, len(master.Steps))

	index, ok := master.Resolve(LABEL_START)
	assert.True(ok)
	assert.Equal(0, index)

	index, ok = master.Resolve("share")
	assert.True(ok)
	assert.Equal(2, index)

	loop := master.Steps[4]
	assert.Equal(OP_JUMP, loop.Opcode())
	assert.Equal(0, loop.Target)
	assert.Equal(1, loop.Segment)
	assert.Equal(0, master.Steps[2].Junction)
	assert.Equal(-1, master.Steps[3].Junction)

	res := comp.Resources
	assert.Equal([]int{1}, res.Chassis)
	assert.Equal(hw.TRIGGER_PXI1, res.Barrier)
	assert.True(res.HasData)
	assert.Equal(hw.TRIGGER_PXI3, res.Data)

	expected := []hw.Resource{
		{Chassis: 1, Name: "PXI_TRIGGER1"},
		{Chassis: 1, Name: "PXI_TRIGGER3"},
		{Chassis: 1, Name: "CLK_100000000"},
	}
	if diff := cmp.Diff(expected, res.List()); diff != "" {
		t.Errorf("resources (-want +got):\n%s", diff)
	}
}

func TestCompileListing(t *testing.T) {
	comp, err := Compile(buildLoop(t))
	if err != nil {
		t.Fatal(err)
	}

	var buff bytes.Buffer
	err = comp.Listing(&buff)
	assert.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "listing", buff.Bytes())
}

func TestCompileResourcesPerChassis(t *testing.T) {
	assert := assert.New(t)

	prog, master, worker := newPair(t)
	master.Sequence().AddEnd("", 10)
	worker.Sequence().AddEnd("", 10)
	assert.NoError(prog.AddChassis(1, 2))
	assert.NoError(prog.SetSyncResources(hw.TRIGGER_PXI5, hw.TRIGGER_PXI4))
	assert.NoError(prog.SetNonNativeClocks(2e8, 1e8, 2e8))

	comp, err := Compile(prog)
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.False(comp.Resources.HasData)
	assert.Equal([]hw.TriggerLine{hw.TRIGGER_PXI4}, comp.Resources.Lines)
	assert.Equal([]float64{1e8, 2e8}, comp.Resources.Clocks)

	expected := []hw.Resource{
		{Chassis: 1, Name: "PXI_TRIGGER4"},
		{Chassis: 2, Name: "PXI_TRIGGER4"},
		{Chassis: 1, Name: "CLK_100000000"},
		{Chassis: 1, Name: "CLK_200000000"},
		{Chassis: 2, Name: "CLK_100000000"},
		{Chassis: 2, Name: "CLK_200000000"},
	}
	assert.Equal(expected, slices.Collect(comp.Resources.All()))
}

func TestCompileErrors(t *testing.T) {
	type testCase struct {
		kind  CompileKind
		build func(t *testing.T) *Program
	}

	table := map[string]testCase{
		"empty": {COMPILE_EMPTY, func(t *testing.T) *Program {
			return New()
		}},
		"budget-floor": {COMPILE_TIME_BUDGET, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			reg, _ := master.AddRegister("r", WIDTH_LONG, 0)
			master.Sequence().AddRead("", 10, reg, reg)
			return prog
		}},
		"budget-period": {COMPILE_TIME_BUDGET, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddEnd("", 15)
			return prog
		}},
		"owner": {COMPILE_REGISTER_OWNER, func(t *testing.T) *Program {
			prog, master, worker := newPair(t)
			reg, _ := worker.AddRegister("r", WIDTH_LONG, 0)
			master.Sequence().AddArithmetic("", 10, ALU_ADD, Reg(reg), Imm(1), reg)
			return prog
		}},
		"module": {COMPILE_MODULE, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddQueueWaveform("", 10, 1, Imm(1), hw.Queue{})
			return prog
		}},
		"channel": {COMPILE_MODULE, func(t *testing.T) *Program {
			prog, _, worker := newPair(t)
			worker.Sequence().AddQueueWaveform("", 10, 3, Imm(1), hw.Queue{})
			return prog
		}},
		"sandbox-register": {COMPILE_SANDBOX, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			reg, _ := master.AddRegister("r", WIDTH_LONG, 0)
			master.Sequence().AddRead("", 20, reg, SandboxRef{Sandbox: hw.SANDBOX_DEFAULT, Register: "nope"})
			return prog
		}},
		"sandbox-missing": {COMPILE_SANDBOX, func(t *testing.T) *Program {
			prog, _, worker := newPair(t)
			reg, _ := worker.AddRegister("r", WIDTH_LONG, 0)
			worker.Sequence().AddRead("", 20, reg, SandboxRef{Sandbox: hw.SANDBOX_DEFAULT, Register: "data"})
			return prog
		}},
		"label-duplicate": {COMPILE_LABEL_DUPLICATE, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddEnd("here", 10)
			master.Sequence().AddEnd("here", 10)
			return prog
		}},
		"label-start": {COMPILE_LABEL_DUPLICATE, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddEnd("", 10)
			master.Sequence().AddEnd(LABEL_START, 10)
			return prog
		}},
		"label-missing": {COMPILE_LABEL_MISSING, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddJump("", 10, "nowhere")
			return prog
		}},
		"crossed": {COMPILE_JUNCTION_CROSSED, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddEnd("", 10)
			prog.AddJunction("meet", 100)
			master.Sequence().AddJump("", 10, LABEL_START)
			return prog
		}},
		"asymmetric": {COMPILE_JUNCTION_ASYMMETRIC, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			jn, _ := prog.AddJunction("meet", 100)
			master.Sequence().Add("", 10, Sync{Junction: jn})
			return prog
		}},
		"global-misaligned": {COMPILE_JUNCTION_CROSSED, func(t *testing.T) *Program {
			prog, master, worker := newPair(t)
			w, _ := worker.AddRegister("w", WIDTH_LONG, 0)
			m, _ := master.AddRegister("m", WIDTH_LONG, 0)
			worker.Sequence().AddArithmetic("late", 10, ALU_ADD, Reg(w), Imm(1), w)
			prog.AddJunction("meet", 100)
			master.Sequence().AddArithmetic("late", 10, ALU_ADD, Reg(m), Imm(1), m)
			prog.AddGlobalJump("again", 10, "late")
			return prog
		}},
		"end-before-junction": {COMPILE_JUNCTION_ASYMMETRIC, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.Sequence().AddEnd("", 10)
			prog.AddJunction("meet", 100)
			prog.AddGlobalJump("again", 10, LABEL_START)
			return prog
		}},
		"event-missing": {COMPILE_MODULE, func(t *testing.T) *Program {
			prog, master, _ := newPair(t)
			master.BindEvent(hw.FpgaUserEvent(hw.FPGA_USER_COUNT), "bogus")
			return prog
		}},
		"resources-lines": {COMPILE_RESOURCES, func(t *testing.T) *Program {
			prog, master, worker := newPair(t)
			a, _ := master.AddRegister("a", WIDTH_LONG, 0)
			b, _ := worker.AddRegister("b", WIDTH_LONG, 0)
			jn, _ := prog.AddJunction("meet", 100)
			jn.Share("ab", a, 32, []*Register{b})
			prog.SetSyncResources(hw.TRIGGER_PXI2, hw.TRIGGER_PXI2)
			return prog
		}},
		"resources-chassis": {COMPILE_RESOURCES, func(t *testing.T) *Program {
			prog, _, _ := newPair(t)
			prog.AddChassis(7)
			return prog
		}},
		"resources-clock": {COMPILE_RESOURCES, func(t *testing.T) *Program {
			prog, _, _ := newPair(t)
			prog.SetNonNativeClocks(0)
			return prog
		}},
	}

	for name, tc := range table {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			prog := tc.build(t)
			comp, err := Compile(prog)
			assert.Nil(comp)
			assert.Equal(tc.kind, compileKind(err), "%v", err)
			assert.ErrorIs(err, compileKindErr[tc.kind])
			assert.Equal(PHASE_BUILT, prog.Phase())
		})
	}
}

func TestCompileOrder(t *testing.T) {
	assert := assert.New(t)

	// A budget violation on the first engine wins over a missing label on
	// the second.
	prog, master, worker := newPair(t)
	worker.Sequence().AddJump("", 10, "nowhere")
	master.Sequence().AddEnd("", 5)

	_, err := Compile(prog)
	assert.Equal(COMPILE_TIME_BUDGET, compileKind(err))

	var compErr *CompileError
	assert.True(errors.As(err, &compErr))
	assert.Equal("master", compErr.Engine)
}

func TestCompileEndBeforeJunction(t *testing.T) {
	assert := assert.New(t)

	prog, master, worker := newPair(t)
	worker.Sequence().AddEnd("", 10)
	prog.AddJunction("first", 100)
	prog.AddJunction("second", 100)
	master.Sequence().AddEnd("", 10)
	prog.AddGlobalEnd("done", 10)

	_, err := Compile(prog)
	assert.ErrorIs(err, ErrJunctionAsymmetric)

	var compErr *CompileError
	assert.True(errors.As(err, &compErr))
	assert.Equal("master", compErr.Engine)
	assert.Contains(compErr.Detail, `"second"`)

	// Ending after the last junction, or ending everywhere at once, is fine.
	prog, master, _ = newPair(t)
	prog.AddGlobalEnd("stop", 10)
	prog.AddJunction("meet", 100)
	master.Sequence().AddEnd("", 10)

	_, err = Compile(prog)
	assert.NoError(err)
}

func TestCompileDeterministic(t *testing.T) {
	assert := assert.New(t)

	// Several violations at once; every compile reports the same one.
	build := func() *Program {
		prog, master, worker := newPair(t)
		worker.Sequence().AddJump("", 10, "nowhere")
		master.Sequence().AddEnd("", 10)
		prog.AddJunction("meet", 100)
		prog.SetSyncResources()
		return prog
	}

	var first *CompileError
	for range 5 {
		prog := build()
		for range 2 {
			_, err := Compile(prog)
			var compErr *CompileError
			if !assert.True(errors.As(err, &compErr)) {
				return
			}
			if first == nil {
				first = compErr
			}
			assert.Equal(first.Kind, compErr.Kind)
			assert.Equal(first.Engine, compErr.Engine)
			assert.Equal(first.Detail, compErr.Detail)
		}
	}
	assert.Equal(COMPILE_LABEL_MISSING, first.Kind)
	assert.Equal("worker", first.Engine)
}
