// Package session loads a compiled program onto a backend, runs it, and
// releases it.
//
// Resources are reserved in a Table shared by every session on the host.
// Loading is all-or-nothing: a failed Load leaves no reservation behind.
// Release is the only cancellation path and may be called any number of
// times. Releasing while an engine is held at a junction abandons the
// barrier; real hardware may need a module reset afterwards.
package session
