// Package bridge carries composed graphs and parameter updates to synthesis
// engines over socket.io, and lets an engine or editor ask for them.
//
// Server events, emitted to every connected client:
//
//	graph   a composed graph, on every revision
//	params  a parameter update pushed into live inputs
//
// Client requests, answered to the requesting client only:
//
//	graph:get     {"revision": N}; N omitted or 0 means the latest
//	snapshot:get  the read-only node and link snapshot
//	param:set     {"handle": "node[3]", "scalar": 1.5} or {"handle": ..., "array": [...]}
//
// Failed requests are answered with an `error` event carrying a message.
package bridge
