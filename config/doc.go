// Package config loads control loop topologies from YAML or HCL files.
//
// A topology file declares the chassis, the sync resources, the non-native
// clocks, the modules (with their sandbox descriptors) and the loop's
// register names, signals and time budgets. Anything left out keeps the
// value of Default.
//
// Time budgets are integer expressions. They may refer to CLOCK_NS, FOREVER
// and the default budget of every state (WAIT, READ, SHARE, RESET, QUEUE,
// QUEUE_DONE, TRIGGER, INCREMENT, JUMP, END, WAIT_TIMEOUT).
package config
