// Package registry maps operation tags to fragment constructors.
//
// The Registry is the only place that knows which operations exist. Modules
// register their operations at startup; the rebuild pipeline asks the
// registry to build a fragment for a node's tag. Adding an operation never
// touches the node store.
//
// Tags are resolved in two steps: an exact match against registered
// operations, then each registered matcher in registration order. Matchers
// serve families of tags such as `2outs`.
package registry
