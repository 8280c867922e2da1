package hw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	assert := assert.New(t)

	ev, err := ParseEvent("fpga_user_4")
	assert.NoError(err)
	assert.Equal(FpgaUserEvent(4), ev)
	assert.Equal("fpga_user_4", ev.String())

	_, err = ParseEvent("fpga_user_8")
	assert.ErrorIs(err, ErrSignalName)

	act, err := ParseAction("awg_trigger_2")
	assert.NoError(err)
	assert.Equal(AwgTrigger(2), act)
	assert.Equal("awg_trigger_2", act.String())

	channel, ok := act.AwgChannel()
	assert.True(ok)
	assert.Equal(2, channel)

	act, err = ParseAction("FPGA_USER_7")
	assert.NoError(err)
	assert.Equal(FpgaUserAction(7), act)
	_, ok = act.AwgChannel()
	assert.False(ok)

	_, err = ParseAction("awg_trigger_0")
	assert.ErrorIs(err, ErrSignalName)
	_, err = ParseAction("awg_trigger_5")
	assert.ErrorIs(err, ErrSignalName)
}

func TestTriggerLine(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"PXI_TRIGGER3", "pxi3", "3", " Pxi_Trigger3 "} {
		tl, err := ParseTriggerLine(name)
		assert.NoError(err, name)
		assert.Equal(TRIGGER_PXI3, tl, name)
	}

	_, err := ParseTriggerLine("PXI8")
	assert.ErrorIs(err, ErrTriggerLine)
	_, err = ParseTriggerLine("star")
	assert.ErrorIs(err, ErrTriggerLine)

	assert.Equal("chassis2/PXI_TRIGGER5", LineResource(2, TRIGGER_PXI5).String())
	assert.Equal("chassis1/CLK_100000000", ClockResource(1, 1e8).String())
	assert.Equal("chassis1/CLK_12.5", ClockResource(1, 12.5).String())
}

func TestModuleKind(t *testing.T) {
	assert := assert.New(t)

	kind, err := ParseModuleKind("dig")
	assert.NoError(err)
	assert.Equal(MODULE_DIGITIZER, kind)
	assert.Equal("digitizer", kind.String())

	_, err = ParseModuleKind("scope")
	assert.ErrorIs(err, ErrModuleKindInvalid)

	mode, err := ParseTriggerMode("SW_HVI_ONE")
	assert.NoError(err)
	assert.Equal(TRIGGER_SW_HVI_ONE, mode)
	_, err = ParseTriggerMode("never")
	assert.ErrorIs(err, ErrSignalName)

	for name, mode := range triggerModeMap {
		assert.Equal(name, mode.String())
	}
	assert.Equal("TriggerMode(2)", TriggerMode(2).String())
}
