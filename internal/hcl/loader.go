package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/circles/internal/config"
	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/specialistvlad/circles/internal/fsutil"
	"github.com/specialistvlad/circles/internal/schema"
)

// Extension is the file extension of patch files.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL patch loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extension implements config.Loader.
func (l *Loader) Extension() string { return Extension }

// Load parses every patch file under paths, in lexical order, and merges
// their blocks into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findPatchFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered patch files.", "count", len(files))

	model := &config.Model{}
	declared := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.PatchFile
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Nodes {
			if prev, dup := declared[block.Name]; dup {
				return nil, fmt.Errorf("node %q in %s is already declared in %s", block.Name, file, prev)
			}
			n, err := translateNode(ctx, file, block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			declared[block.Name] = file
			model.Nodes = append(model.Nodes, n)
		}
		for _, block := range root.Links {
			link, err := translateLink(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Links = append(model.Links, link)
		}
	}

	for _, link := range model.Links {
		for _, name := range []string{link.From, link.To} {
			if _, ok := declared[name]; !ok {
				return nil, fmt.Errorf("link %q -> %q refers to undeclared node %q", link.From, link.To, name)
			}
		}
	}

	logger.Debug("HCL loading complete.", "nodes", len(model.Nodes), "links", len(model.Links))
	return model, nil
}

// findPatchFiles expands directories and returns a sorted, de-duplicated
// list of patch files. Missing paths are an error.
func findPatchFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) != Extension {
				return nil, fmt.Errorf("%s is not a %s patch file", path, Extension)
			}
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, Extension)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	sort.Strings(files)
	return files, nil
}
