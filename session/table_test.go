package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lockstep/hw"
)

func TestTable(t *testing.T) {
	assert := assert.New(t)

	tb := NewTable()
	alice := uuid.New()
	bob := uuid.New()

	line0 := hw.LineResource(1, hw.TRIGGER_PXI0)
	line1 := hw.LineResource(1, hw.TRIGGER_PXI1)
	line2 := hw.LineResource(2, hw.TRIGGER_PXI0)
	clock := hw.ClockResource(1, 1e8)

	assert.NoError(tb.Reserve(alice, line2, line0, clock))

	owner, ok := tb.Owner(line0)
	assert.True(ok)
	assert.Equal(alice, owner)

	// Holding a resource already is a conflict, for its owner too.
	err := tb.Reserve(alice, line0)
	assert.ErrorIs(err, ErrResourceConflict)

	// A conflict reserves nothing.
	err = tb.Reserve(bob, line1, line0)
	assert.ErrorIs(err, ErrResourceConflict)

	var conflict *ResourceConflictError
	assert.ErrorAs(err, &conflict)
	assert.Equal(line0, conflict.Resource)
	assert.Equal(alice, conflict.Owner)

	_, ok = tb.Owner(line1)
	assert.False(ok)

	assert.Equal([]hw.Resource{clock, line0, line2}, tb.Reserved())

	assert.Equal(0, tb.Release(bob))
	assert.Equal(3, tb.Release(alice))
	assert.Empty(tb.Reserved())

	assert.NoError(tb.Reserve(bob, line1))
	tb.Clear()
	assert.Empty(tb.Reserved())
}
