// Package fragment defines the audio-processing sub-network a node derives
// from its operation, and the live input cells through which parameter edits
// reach a running fragment without rebuilding it.
//
// A Fragment is opaque to the graph engine: the engine only needs its arity.
// Wiring fragments together and pulling samples through them is the external
// synthesis engine's job.
package fragment
