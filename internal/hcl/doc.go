// Package hcl provides the concrete HCL implementation of config.Loader.
// It is responsible for file discovery, parsing, decoding patch blocks and
// converting their cty values into the format-agnostic model.
package hcl
