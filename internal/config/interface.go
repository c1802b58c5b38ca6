// Package config defines the format-agnostic patch model: the nodes, links
// and ranks a headless run starts from, along with the Loader interface that
// produces it. Concrete loaders, such as for HCL, live in separate packages.
package config

import "context"

// Loader is the interface for a format-specific patch loader.
type Loader interface {
	// Load reads every patch file under the given paths and merges them into
	// one model. Node names must be unique across all files.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Extension is the file extension of the patch files Load reads.
	Extension() string
}
