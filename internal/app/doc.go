// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: loading a
// patch into an edit session, then either dumping the composed result once or
// serving it to the synthesis engine until the context ends. It is decoupled
// from any specific entrypoint like a CLI.
package app
