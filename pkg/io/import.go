package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/infection/pkg/errors"
	"github.com/matzehuels/infection/pkg/graph"
)

type document struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID      string  `json:"id"`
	Version float64 `json:"version"`
}

type edge struct {
	Mentor string `json:"mentor"`
	Pupil  string `json:"pupil"`
}

// ReadJSON decodes a JSON graph from r.
//
// Every node id must be unique and every edge must reference declared
// nodes. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := graph.New()
	for i, n := range doc.Nodes {
		if err := errors.ValidateNodeName(n.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", i)
		}
		if err := errors.ValidateVersion(n.Version); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %s", n.ID)
		}
		if _, exists := g.Lookup(n.ID); exists {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %q", n.ID)
		}
		g.AddNamedNode(n.ID, n.Version)
	}

	for _, e := range doc.Edges {
		mentor, ok := g.Lookup(e.Mentor)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "edge %s->%s: unknown mentor %q", e.Mentor, e.Pupil, e.Mentor)
		}
		pupil, ok := g.Lookup(e.Pupil)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "edge %s->%s: unknown pupil %q", e.Mentor, e.Pupil, e.Pupil)
		}
		g.Connect(mentor, pupil)
	}

	return g, nil
}

// ImportJSON reads the JSON graph file at path.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
