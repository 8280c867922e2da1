// Package engine is the interpreter of one engine's compiled sequence.
//
// A Core executes one instruction per Tick. Waits and junctions do not
// advance the instruction pointer: the caller resolves them with Expire or
// Pass, exactly like the hardware holds its instruction pointer until a
// trigger or barrier releases it.
package engine
