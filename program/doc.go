// Package program builds and compiles multi-engine control programs.
//
// A Program owns one Engine per hardware module. Each engine carries its own
// registers, event and action bindings, and an ordered instruction Sequence.
// Junctions are rendezvous barriers inserted at the same logical point of
// every engine's sequence; a junction may broadcast register values from one
// engine to the others with RegisterShare.
//
// Building is incremental and checks only local rules (unique names,
// share ownership and widths). Compile validates the whole program once,
// resolves labels, and assigns trigger lines and clocks. A compiled program is
// frozen.
package program
