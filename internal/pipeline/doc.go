// Package pipeline turns the committed graph into the Composed Graph handed
// to the synthesis engine.
//
// A rebuild reacts to three independent change classes, in this order:
//
//  1. Dirty nodes get a fresh fragment from the registry.
//  2. Nodes whose links changed get retyped codes copied into their slot
//     descriptors and their input bindings recomputed.
//  3. An order notification re-derives the rank-ascending sequence.
//
// After step 1 no node is dirty, and bindings are read only from inlets whose
// mirror is live, so the result never shows a half-built node or a
// half-removed link.
package pipeline
