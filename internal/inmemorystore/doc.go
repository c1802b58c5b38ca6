// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. It is suitable for a single editor
// process, where the whole graph fits comfortably in memory.
package inmemorystore
