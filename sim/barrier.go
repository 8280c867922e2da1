package sim

import (
	"context"
	"fmt"
	"sync"
)

// barrier is a cyclic rendezvous of a fixed number of engines. Each
// generation is one junction occurrence.
type barrier struct {
	parties int
	fire    func(junction int) error

	mutex      sync.Mutex
	arrived    int
	junction   int
	generation uint64
	release    chan struct{}
	broken     error
	fired      map[int]uint64
}

func newBarrier(parties int, fire func(junction int) error) *barrier {
	return &barrier{
		parties: parties,
		fire:    fire,
		release: make(chan struct{}),
		fired:   map[int]uint64{},
	}
}

// breakLocked fails every current and future waiter. Caller holds the mutex.
func (b *barrier) breakLocked(err error) {
	if b.broken == nil {
		b.broken = err
		close(b.release)
	}
}

// Await blocks until every engine arrived at the junction. The last
// arriver runs fire before anyone is released.
func (b *barrier) Await(ctx context.Context, junction int) (err error) {
	b.mutex.Lock()
	if b.broken != nil {
		err = b.broken
		b.mutex.Unlock()
		return
	}

	if b.arrived == 0 {
		b.junction = junction
	} else if b.junction != junction {
		b.breakLocked(fmt.Errorf("%w: %d and %d", ErrJunctionMismatch, b.junction, junction))
		err = b.broken
		b.mutex.Unlock()
		return
	}

	b.arrived++
	if b.arrived == b.parties {
		err = b.fire(junction)
		if err != nil {
			b.breakLocked(err)
			b.mutex.Unlock()
			return
		}
		b.fired[junction]++
		b.arrived = 0
		b.generation++
		close(b.release)
		b.release = make(chan struct{})
		b.mutex.Unlock()
		return
	}

	release := b.release
	generation := b.generation
	b.mutex.Unlock()

	select {
	case <-ctx.Done():
		return
	case <-release:
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.generation == generation {
		err = b.broken
	}
	return
}

// Leave removes a halted engine. Engines held at, or arriving at, a later
// junction can never be released, so the barrier breaks.
func (b *barrier) Leave() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.breakLocked(ErrJunctionAbandon)
}

// Fired returns how often a junction fired.
func (b *barrier) Fired(junction int) uint64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.fired[junction]
}
