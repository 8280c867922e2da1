package hw

import (
	"sync"
)

// LineState is a snapshot of a signal line.
type LineState struct {
	Level bool   // Current level.
	Rises uint64 // Inactive to active transitions since reset.
	Falls uint64 // Active to inactive transitions since reset.
}

// Line is a signal line with edge counters. Engines sample it, the host or
// the FPGA sandbox drives it.
type Line struct {
	mutex   sync.Mutex
	state   LineState
	changed chan struct{}
}

// Reset the line to inactive and clear the edge counters.
func (ln *Line) Reset() {
	ln.mutex.Lock()
	defer ln.mutex.Unlock()

	ln.state = LineState{}
	ln.notify()
}

// notify wakes everyone waiting on Changed(). Caller holds the mutex.
func (ln *Line) notify() {
	if ln.changed != nil {
		close(ln.changed)
		ln.changed = nil
	}
}

// Set drives the line level, counting transitions.
func (ln *Line) Set(level bool) {
	ln.mutex.Lock()
	defer ln.mutex.Unlock()

	if ln.state.Level == level {
		return
	}

	ln.state.Level = level
	if level {
		ln.state.Rises++
	} else {
		ln.state.Falls++
	}
	ln.notify()
}

// State returns the current line state.
func (ln *Line) State() LineState {
	ln.mutex.Lock()
	defer ln.mutex.Unlock()

	return ln.state
}

// Changed returns a channel closed at the next transition of the line.
func (ln *Line) Changed() <-chan struct{} {
	ln.mutex.Lock()
	defer ln.mutex.Unlock()

	if ln.changed == nil {
		ln.changed = make(chan struct{})
	}
	return ln.changed
}
