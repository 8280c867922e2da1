// Package sim runs compiled programs on simulated engines.
//
// Each engine runs in its own goroutine, so engines share no clock. They
// agree only at junctions: the last engine to arrive at a junction
// snapshots every register share source, writes the destinations, and
// then releases all engines together.
//
// Runtime faults are not reported to the host except through logs,
// metrics and the registers it polls.
package sim
