package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/session"
)

func doCommand(t *testing.T, args ...string) (out string, err error) {
	return doCommandWith(t, &RootOptions{Logger: zaptest.NewLogger(t)}, args...)
}

func doCommandWith(t *testing.T, opts *RootOptions, args ...string) (out string, err error) {
	var buff bytes.Buffer

	cmd := newRootCommand(opts)
	cmd.SetOut(&buff)
	cmd.SetErr(&buff)
	cmd.SetArgs(args)

	err = cmd.Execute()
	out = buff.String()
	return
}

func TestCompile(t *testing.T) {
	assert := assert.New(t)

	out, err := doCommand(t, "compile", "--registers")
	require.NoError(t, err)

	assert.Contains(out, "M3102A/sandbox0:\n")
	assert.Contains(out, "\tRegister_Bank_HviEvent4 register_bank length=4 address=4 access=rw\n")
	assert.Contains(out, "engine MasterEngine: digitizer chassis1 slot8\n")
	assert.Contains(out, "engine M3202A: awg chassis1 slot11\n")
	assert.Contains(out, "share GlobalJunction/regSharing: MasterEngine.HviRegFSMValues[16] -> M3202A.HviRegWavenumStore\n")
}

func TestResources(t *testing.T) {
	assert := assert.New(t)

	out, err := doCommand(t, "resources")
	require.NoError(t, err)

	assert.Equal(`barrier: PXI_TRIGGER0
data: PXI_TRIGGER1
chassis1/PXI_TRIGGER0
chassis1/PXI_TRIGGER1
chassis1/CLK_10000000
`, out)
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	out, err := doCommand(t, "run", "-e", "data 7", "-e", "", "-e", "next", "-e", "q")
	require.NoError(t, err)
	assert.Equal("N. of iterations = 2\n", out)
}

func TestRunClear(t *testing.T) {
	assert := assert.New(t)

	table := session.NewTable()
	stale := uuid.New()
	barrier := hw.LineResource(1, hw.TRIGGER_PXI0)
	require.NoError(t, table.Reserve(stale, barrier))

	opts := &RootOptions{Logger: zaptest.NewLogger(t), Table: table}
	_, err := doCommandWith(t, opts, "run", "-e", "q")
	assert.ErrorIs(err, session.ErrResourceConflict)

	owner, ok := table.Owner(barrier)
	assert.True(ok)
	assert.Equal(stale, owner)
	assert.Equal(1, len(table.Reserved()))

	opts = &RootOptions{Logger: zaptest.NewLogger(t), Table: table}
	out, err := doCommandWith(t, opts, "run", "--clear", "-e", "q")
	require.NoError(t, err)
	assert.Equal("N. of iterations = 0\n", out)
	assert.Empty(table.Reserved())
}

func TestBuildClose(t *testing.T) {
	assert := assert.New(t)

	opts := &RootOptions{Logger: zaptest.NewLogger(t)}
	bld, err := opts.load()
	require.NoError(t, err)
	require.NotEmpty(t, bld.modules)

	for _, mod := range bld.modules {
		assert.NoError(mod.Pulse(hw.FpgaUserAction(0)))
	}

	assert.NoError(bld.Close())
	for _, mod := range bld.modules {
		assert.ErrorIs(mod.Pulse(hw.FpgaUserAction(0)), hw.ErrModuleClosed)
	}
}

func TestRunScript(t *testing.T) {
	assert := assert.New(t)

	out, err := doCommand(t, "run", "--script", "testdata/count.star", "--duration", "20ms")
	require.NoError(t, err)
	assert.Contains(out, "master: ")
	assert.Contains(out, "worker: ")
}

func TestErrors(t *testing.T) {
	_, err := doCommand(t, "compile", "--config", "testdata/missing.yaml")
	assert.Error(t, err)

	_, err = doCommand(t, "compile", "--script", "testdata/missing.star")
	assert.Error(t, err)

	_, err = doCommand(t, "run", "-e", "bogus")
	assert.Error(t, err)

	_, err = doCommand(t, "resources", "--lang", "!!")
	assert.Error(t, err)
}

func TestLang(t *testing.T) {
	out, err := doCommand(t, "resources", "--lang", "en-US")
	require.NoError(t, err)
	assert.Contains(t, out, "barrier: PXI_TRIGGER0\n")
}
