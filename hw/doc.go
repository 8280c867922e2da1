// Package hw describes the hardware collaborators consumed by the
// synchronization core: opened instrument modules, their execution engines,
// FPGA sandboxes with named register blocks, signal lines driven by events
// and actions, and the chassis trigger lines and clocks reserved for a run.
//
// SimModule and SimSandbox provide an in-process model of that hardware so the
// rest of the system can be exercised without instruments attached.
package hw
