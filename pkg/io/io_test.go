package io

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/infection/pkg/errors"
	"github.com/matzehuels/infection/pkg/graph"
)

const classroomJSON = `{
  "nodes": [
    {"id": "coach", "version": 1.5},
    {"id": "ann"},
    {"id": "bob", "version": 2}
  ],
  "edges": [
    {"mentor": "coach", "pupil": "ann"},
    {"mentor": "coach", "pupil": "bob"},
    {"mentor": "coach", "pupil": "bob"}
  ]
}`

func TestReadJSON(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(classroomJSON))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (duplicate edge collapses)", g.EdgeCount())
	}

	coach, _ := g.Lookup("coach")
	ann, _ := g.Lookup("ann")
	bob, _ := g.Lookup("bob")
	if coach != 0 || ann != 1 || bob != 2 {
		t.Errorf("ids = %d %d %d, want file order 0 1 2", coach, ann, bob)
	}
	if g.Version(coach) != 1.5 || g.Version(ann) != 0 {
		t.Errorf("versions = %v, %v, want 1.5, 0", g.Version(coach), g.Version(ann))
	}
	if got := g.Pupils(coach); !slices.Equal(got, []graph.NodeID{ann, bob}) {
		t.Errorf("Pupils(coach) = %v", got)
	}
	if got := g.Mentors(bob); !slices.Equal(got, []graph.NodeID{coach}) {
		t.Errorf("Mentors(bob) = %v", got)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"nodes": [`, errors.ErrCodeInvalidFormat},
		{"empty id", `{"nodes": [{"id": ""}]}`, errors.ErrCodeInvalidGraph},
		{"control char id", `{"nodes": [{"id": "a\nb"}]}`, errors.ErrCodeInvalidGraph},
		{"duplicate id", `{"nodes": [{"id": "a"}, {"id": "a"}]}`, errors.ErrCodeInvalidGraph},
		{"unknown mentor", `{"nodes": [{"id": "a"}], "edges": [{"mentor": "x", "pupil": "a"}]}`, errors.ErrCodeUnknownNode},
		{"unknown pupil", `{"nodes": [{"id": "a"}], "edges": [{"mentor": "a", "pupil": "x"}]}`, errors.ErrCodeUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestReadJSONEmptyGraph(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", g.NodeCount())
	}
}

func TestRoundTrip(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(classroomJSON))
	if err != nil {
		t.Fatal(err)
	}
	ann, _ := g.Lookup("ann")
	g.SetVersion(ann, 4)

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON(WriteJSON()) error = %v", err)
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("round trip = %d nodes %d edges, want %d %d",
			back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	if id, _ := back.Lookup("ann"); back.Version(id) != 4 {
		t.Errorf("ann version = %v, want 4", back.Version(id))
	}
}

func TestImportExportFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	if err := os.WriteFile(in, []byte(classroomJSON), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := ImportJSON(in)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}

	out := filepath.Join(dir, "out.json")
	if err := ExportJSON(g, out); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if _, err := ImportJSON(out); err != nil {
		t.Errorf("ImportJSON(exported) error = %v", err)
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want code %v", err, errors.ErrCodeFileNotFound)
	}
}
