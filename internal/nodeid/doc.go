// internal/nodeid/doc.go

/*
Package nodeid provides the identifiers used throughout the graph: node
handles, link ids and endpoint ids.

Every identifier is a positive integer drawn from a monotonic Sequence, so a
value is never handed out twice within a process. Zero is reserved as the
"no identifier" value.

The canonical text form is `kind[n]`, e.g. `node[7]` or `link[3]`. It is
what the engine bridge and the snapshot dump use on the wire.
*/
package nodeid
