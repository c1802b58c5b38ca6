// Package schema holds the HCL block structures of a patch file, decoded
// with gohcl.
package schema

import "github.com/hashicorp/hcl/v2"

// Node represents a `node` block. Array stays an expression so that an
// omitted array can be told apart from an empty one.
type Node struct {
	Name      string         `hcl:"name,label"`
	Operation string         `hcl:"operation,optional"`
	Scalar    *float64       `hcl:"scalar,optional"`
	Array     hcl.Expression `hcl:"array,optional"`
	Rank      *int           `hcl:"rank,optional"`
}

// Link represents a `link` block from one named node to another.
type Link struct {
	From     string         `hcl:"from,label"`
	To       string         `hcl:"to,label"`
	FromSlot int            `hcl:"from_slot,optional"`
	ToSlot   int            `hcl:"to_slot,optional"`
	Types    hcl.Expression `hcl:"types,optional"`
	Open     *bool          `hcl:"open,optional"`
}

// PatchFile represents the top-level structure of a patch file. Any other
// block or attribute is a decode error.
type PatchFile struct {
	Nodes []*Node `hcl:"node,block"`
	Links []*Link `hcl:"link,block"`
}
