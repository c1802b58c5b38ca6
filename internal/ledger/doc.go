// Package ledger maintains each node's rank, the integer position that
// decides composition order.
//
// Ranks move in two ways only: an explicit bump by one in either direction,
// or Repair, which lifts a node that does not rank above one of its direct
// parents. Repair looks one hop upstream and never lowers a rank; a chain of
// violations is settled by calling it again. A full topological sort would
// overwrite ranks the user chose by hand, so none is attempted.
//
// Any change raises a single-slot notification that the rebuild pipeline
// consumes once per edit cycle. Multiple raises before a consume coalesce.
package ledger
