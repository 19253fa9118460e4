package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/infection/pkg/graph"
)

func TestToDOT_Basic(t *testing.T) {
	g := graph.New()
	a := g.AddNamedNode("a", 1)
	b := g.AddNamedNode("b", 1)
	g.Connect(a, b)

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `"n0" [label="a"]`) {
		t.Error("ToDOT() output missing node a")
	}
	if !strings.Contains(dot, `"n1" [label="b"]`) {
		t.Error("ToDOT() output missing node b")
	}
	if !strings.Contains(dot, `"n0" -> "n1"`) {
		t.Error("ToDOT() output missing edge")
	}
	if strings.Contains(dot, `"n1" -> "n0"`) {
		t.Error("ToDOT() should emit each edge once, mentor to pupil")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := graph.New()
	g.AddNamedNode("coach", 2.5)

	dot := ToDOT(g, Options{Detailed: true})

	if !strings.Contains(dot, `id: 0`) {
		t.Error("ToDOT() detailed output missing id")
	}
	if !strings.Contains(dot, `version: 2.5`) {
		t.Error("ToDOT() detailed output missing version")
	}
}

func TestToDOT_Highlight(t *testing.T) {
	g := graph.New()
	g.AddNamedNode("new", 2)
	g.AddNamedNode("old", 1)
	v := 2.0

	dot := ToDOT(g, Options{Highlight: &v, Title: "after"})

	if strings.Count(dot, "#8fd3c7") != 1 {
		t.Errorf("expected exactly one highlighted node:\n%s", dot)
	}
	if !strings.Contains(dot, `label="after"`) {
		t.Error("ToDOT() output missing title")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox = %s, want unchanged", got)
	}
}
