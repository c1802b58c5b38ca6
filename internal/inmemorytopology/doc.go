// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface.
//
// Links and endpoints live in maps keyed by id. A per-node index lists the
// endpoints attached under each node and is maintained on every mutation
// rather than recomputed by scanning.
package inmemorytopology
