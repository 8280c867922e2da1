// Package fsm builds the digitizer driven AWG control loop and the host
// console that drives it.
//
// The master engine, on a digitizer, waits for its FPGA to raise a user
// event, reads a waveform number from the FPGA sandbox and shares it with
// every worker engine at a junction. The workers, on AWGs, queue that
// waveform on each channel, rendezvous again, and trigger all channels.
// The master counts cycles, and every engine jumps back to Start.
package fsm
