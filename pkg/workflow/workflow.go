// Package workflow performs a shallow sanity check of ComfyUI workflow files.
// The file itself is always shipped verbatim; inspection only rejects input
// that is not JSON at all.
package workflow

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/richinsley/comfy2go/graphapi"
)

type Format string

const (
	// FormatGraph is the UI export format with a nodes/links graph.
	FormatGraph Format = "graph"
	// FormatPrompt is the API export format, a map of node id to inputs.
	FormatPrompt Format = "prompt"
)

type Info struct {
	Format    Format
	NodeCount int
}

// Inspect parses the workflow file and reports its format and node count.
func Inspect(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}
	return InspectBytes(data)
}

func InspectBytes(data []byte) (Info, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Info{}, fmt.Errorf("workflow is not valid JSON: %w", err)
	}

	if _, ok := probe["nodes"]; ok {
		var graph graphapi.Graph
		if err := json.Unmarshal(data, &graph); err != nil {
			return Info{}, fmt.Errorf("failed to load workflow graph: %w", err)
		}
		return Info{Format: FormatGraph, NodeCount: len(graph.Nodes)}, nil
	}

	return Info{Format: FormatPrompt, NodeCount: len(probe)}, nil
}
