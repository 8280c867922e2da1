package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/lockstep/fsm"
	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
)

func expectedTopology() fsm.Topology {
	top := fsm.DefaultTopology()
	top.Chassis = []int{1}
	top.SyncResources = []hw.TriggerLine{hw.TRIGGER_PXI4, hw.TRIGGER_PXI5}
	top.Clocks = []float64{1e8}
	top.Master = "Master"
	top.Workers = []string{"Worker"}
	top.InitialCounter = 0
	top.BitsToShare = 8
	top.DataRegister = "Data"
	top.EventRegister = "Ready"
	top.DataReady = hw.FpgaUserEvent(2)
	top.ResetAction = hw.FpgaUserAction(3)
	top.Queue.Cycles = 0
	top.Timing.QueueDone = 2000
	top.Timing.Jump = 1000
	top.Timing.WaitTimeoutNs = 5000
	return top
}

func TestLoad(t *testing.T) {
	for _, path := range []string{"testdata/topology.yaml", "testdata/topology.hcl"} {
		t.Run(path, func(t *testing.T) {
			assert := assert.New(t)

			file, err := Load(path)
			require.NoError(t, err)

			top, err := file.Topology()
			require.NoError(t, err)
			if diff := cmp.Diff(expectedTopology(), top); diff != "" {
				t.Errorf("topology (-want +got):\n%s", diff)
			}

			mods, err := file.Open()
			require.NoError(t, err)
			assert.Equal(2, len(mods))
			assert.Equal(hw.MODULE_DIGITIZER, mods[0].Kind())
			assert.Equal(2, mods[1].Channels())

			sb, ok := mods[0].SimSandbox(hw.SANDBOX_DEFAULT)
			assert.True(ok)
			_, ok = sb.Lookup("Ready")
			assert.True(ok)

			modules := make([]hw.Module, len(mods))
			for n, mod := range mods {
				modules[n] = mod
			}
			loop, err := fsm.Build(top, modules)
			require.NoError(t, err)

			comp, err := program.Compile(loop.Program)
			require.NoError(t, err)
			assert.Equal(hw.TRIGGER_PXI4, comp.Resources.Barrier)
			assert.Equal(hw.TRIGGER_PXI5, comp.Resources.Data)
		})
	}
}

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	file := Default()
	top, err := file.Topology()
	assert.NoError(err)
	assert.Equal([]int{1}, top.Chassis)
	assert.Equal(fsm.DefaultTiming(), top.Timing)

	mods, err := file.Open()
	require.NoError(t, err)
	assert.Equal("M3102A", mods[0].Name())
	assert.Equal(8, mods[0].Slot())
	assert.Equal(4, mods[1].Channels())

	// The embedded sandbox holds the reference design's registers.
	sb, _ := mods[0].SimSandbox(hw.SANDBOX_DEFAULT)
	reg, ok := sb.Lookup("Register_Bank_HviEvent4")
	assert.True(ok)
	assert.Equal(hw.FpgaUserEvent(4), *reg.Event)
	reg, ok = sb.Lookup("MemoryMap_HviMemoryMap")
	assert.True(ok)
	assert.Equal(hw.BLOCK_MEMORY_MAP, reg.Block)
	assert.Equal(16, reg.Words())

	modules := []hw.Module{mods[0], mods[1]}
	loop, err := fsm.Build(top, modules)
	require.NoError(t, err)
	_, err = program.Compile(loop.Program)
	assert.NoError(err)
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse("topology.json", []byte("{}"))
	assert.ErrorIs(err, ErrFormat)

	_, err = Parse("bad.yaml", []byte("bogus_field: 1\n"))
	assert.ErrorIs(err, ErrSyntax)

	_, err = Parse("bad.hcl", []byte("module {\n"))
	assert.ErrorIs(err, ErrSyntax)

	file, err := Parse("t.yaml", []byte("sync_resources: [PXI9]\n"))
	require.NoError(t, err)
	_, err = file.Topology()
	assert.ErrorIs(err, hw.ErrTriggerLine)

	file, err = Parse("t.yaml", []byte("modules:\n  - name: x\n    kind: scope\n    slot: 1\n"))
	require.NoError(t, err)
	_, err = file.Open()
	assert.ErrorIs(err, hw.ErrModuleKindInvalid)

	file, err = Parse("t.yaml", []byte("modules:\n  - name: x\n    kind: dig\n    slot: 1\n    sandbox: x.yaml\n"))
	require.NoError(t, err)
	_, err = file.Open()
	assert.Error(err)
}

func TestTiming(t *testing.T) {
	assert := assert.New(t)

	tm, err := Timing(map[string]string{"wait": "WAIT + CLOCK_NS", "wait_timeout": "FOREVER"})
	assert.NoError(err)
	assert.Equal(int64(20), tm.Wait)
	assert.Equal(program.WAIT_FOREVER, tm.WaitTimeoutNs)

	_, err = Timing(map[string]string{"nap": "10"})
	assert.ErrorIs(err, ErrTiming)

	_, err = Timing(map[string]string{"wait": "'ten'"})
	assert.ErrorIs(err, ErrTiming)

	var field *ErrField
	assert.ErrorAs(err, &field)
	assert.Equal("timing.wait", field.Field)
}
