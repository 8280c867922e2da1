package fsm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
	"github.com/ezrec/lockstep/session"
	"github.com/ezrec/lockstep/sim"
)

const (
	eventually = 2 * time.Second
	tick       = time.Millisecond
)

// recorder is a Writer remembering every value.
type recorder []uint32

func (rec *recorder) Write(value uint32) error {
	*rec = append(*rec, value)
	return nil
}

func TestPulse(t *testing.T) {
	assert := assert.New(t)

	var rec recorder
	assert.NoError(Pulse(&rec))
	assert.Equal(recorder{1, 0}, rec)
}

func TestConsole(t *testing.T) {
	assert := assert.New(t)

	dig, awg := openReference(2)
	loop, err := Build(referenceTopology(), []hw.Module{dig, awg})
	require.NoError(t, err)

	comp, err := program.Compile(loop.Program)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	table := session.NewTable()
	s, err := session.Load(comp, sim.New(sim.Options{Logger: log}), table, session.Options{Logger: log})
	require.NoError(t, err)
	defer s.Release()

	require.NoError(t, s.Run(context.Background(), 0))

	con, err := NewConsole(s, loop, log)
	require.NoError(t, err)

	for n := range 3 {
		wave := uint32(0x10000 + 5 + n)
		_, err = con.Execute(fmt.Sprintf("data %#x", wave))
		assert.NoError(err)
		_, err = con.Execute("")
		assert.NoError(err)

		assert.Eventually(func() bool {
			cycles, _ := con.Cycles()
			return cycles == uint32(n+1)
		}, eventually, tick)
	}

	counter, err := con.Counter()
	assert.NoError(err)
	assert.Equal(uint32(1003), counter)
	assert.Equal(3, con.Presses())

	status, err := con.Status()
	assert.NoError(err)
	assert.Equal("N. of iterations = 3", status)

	// Every channel played the shared waveform number, truncated to 16 bits.
	assert.Eventually(func() bool {
		return len(awg.Played()) == 6
	}, eventually, tick)
	for n, wave := range awg.Played() {
		assert.Equal(n%2+1, wave.Channel)
		assert.Equal(uint32(5+n/2), wave.Number)
	}
	assert.Equal(uint64(3), dig.Pulses(hw.FpgaUserAction(7)))

	_, err = con.Execute("bogus")
	assert.ErrorIs(err, ErrCommand)
	_, err = con.Execute("data")
	assert.ErrorIs(err, ErrCommand)

	quit, err := con.Execute("q")
	assert.NoError(err)
	assert.True(quit)
	assert.ErrorIs(con.Advance(), ErrConsoleClosed)

	// The quit flag does not stop the loop.
	assert.NoError(con.Pulse())
	assert.Eventually(func() bool {
		cycles, _ := con.Cycles()
		return cycles == 4
	}, eventually, tick)

	assert.NoError(s.Release())
	assert.Empty(table.Reserved())
}
