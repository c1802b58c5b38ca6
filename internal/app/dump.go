package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/circles/internal/graph"
	"github.com/specialistvlad/circles/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// Report is what a one-shot run writes out.
type Report struct {
	Names    Names              `json:"names" yaml:"names"`
	Composed *pipeline.Composed `json:"composed" yaml:"composed"`
	Snapshot *graph.Snapshot    `json:"snapshot" yaml:"snapshot"`
}

func writeReport(w io.Writer, format string, r *Report) error {
	switch format {
	case DumpNone:
		return nil
	case DumpJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case DumpYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}
