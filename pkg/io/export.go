package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/infection/pkg/graph"
)

// WriteJSON encodes the current node versions and edges of g to w.
// Nodes appear in NodeID order and edges in mentor order, then pupil
// insertion order.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	out := document{
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{ID: n.Name, Version: n.Version})
	}
	for _, n := range g.Nodes() {
		for _, p := range g.Pupils(n.ID) {
			out.Edges = append(out.Edges, edge{Mentor: n.Name, Pupil: g.Name(p)})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
