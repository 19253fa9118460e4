package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/infection/pkg/errors"
	graphio "github.com/matzehuels/infection/pkg/io"
	"github.com/matzehuels/infection/pkg/observability"
	"github.com/matzehuels/infection/pkg/observability/metrics"
)

const classroomJSON = `{
  "nodes": [
    {"id": "coach", "version": 1},
    {"id": "ann", "version": 1},
    {"id": "bob", "version": 1},
    {"id": "cy", "version": 1}
  ],
  "edges": [
    {"mentor": "coach", "pupil": "ann"},
    {"mentor": "coach", "pupil": "bob"},
    {"mentor": "bob", "pupil": "cy"}
  ]
}`

// execute runs the root command with args and an isolated config directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunLimited(t *testing.T) {
	in := writeFile(t, "graph.json", classroomJSON)
	dir := t.TempDir()
	out := filepath.Join(dir, "state.json")
	dot := filepath.Join(dir, "graph.dot")

	got, err := execute(t, "run", in, "--seed", "coach", "--policy", "limited", "-n", "2", "--version", "3", "--out", out, "--dot", dot)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(got, "Infected 2 of 4 nodes from coach") {
		t.Errorf("output missing summary:\n%s", got)
	}
	if !strings.Contains(got, "budget exhausted") {
		t.Errorf("output missing exhausted notice:\n%s", got)
	}

	g, err := graphio.ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON(out) error = %v", err)
	}
	for name, want := range map[string]float64{"coach": 3, "ann": 3, "bob": 1, "cy": 1} {
		id, _ := g.Lookup(name)
		if g.Version(id) != want {
			t.Errorf("%s version = %v, want %v", name, g.Version(id), want)
		}
	}

	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatalf("dot file: %v", err)
	}
	if !strings.Contains(string(data), "digraph G") || strings.Count(string(data), "#8fd3c7") != 2 {
		t.Errorf("dot output:\n%s", data)
	}
}

func TestRunAtomicReportsRejections(t *testing.T) {
	in := writeFile(t, "graph.json", classroomJSON)
	got, err := execute(t, "run", in, "--seed", "coach", "--policy", "atomic", "-n", "2")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(got, "Infected 0 of 4") || !strings.Contains(got, "coach needs 3") {
		t.Errorf("output:\n%s", got)
	}
}

func TestRunErrors(t *testing.T) {
	in := writeFile(t, "graph.json", classroomJSON)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"atomic unlimited", []string{"run", in, "--seed", "coach", "--policy", "atomic", "-n", "-1"}, errors.ErrCodeInvalidInput},
		{"atomic default budget", []string{"run", in, "--seed", "coach", "--policy", "atomic"}, errors.ErrCodeInvalidInput},
		{"bad policy", []string{"run", in, "--seed", "coach", "--policy", "sideways"}, errors.ErrCodeInvalidPolicy},
		{"bad tokens", []string{"run", in, "--seed", "coach", "--tokens", "dice"}, errors.ErrCodeInvalidInput},
		{"unknown seed", []string{"run", in, "--seed", "zed"}, errors.ErrCodeUnknownNode},
		{"missing file", []string{"run", filepath.Join(t.TempDir(), "none.json"), "--seed", "coach"}, errors.ErrCodeFileNotFound},
		{"save without store", []string{"run", in, "--seed", "coach", "--save"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestRunRequiresSeed(t *testing.T) {
	in := writeFile(t, "graph.json", classroomJSON)
	if _, err := execute(t, "run", in); err == nil {
		t.Error("run without --seed should fail")
	}
}

func TestRunSaveToFileStore(t *testing.T) {
	in := writeFile(t, "graph.json", classroomJSON)
	snapshots := t.TempDir()
	cfg := writeFile(t, "config.toml", "[store]\nbackend = \"file\"\npath = \""+filepath.ToSlash(snapshots)+"\"\n")

	got, err := execute(t, "--config", cfg, "run", in, "--seed", "ann", "--save")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(got, "snapshot") {
		t.Errorf("output missing snapshot id:\n%s", got)
	}
	entries, err := os.ReadDir(snapshots)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Errorf("snapshot dir = %v, want one JSON file", entries)
	}
}

func TestRunBadConfig(t *testing.T) {
	in := writeFile(t, "graph.json", classroomJSON)
	cfg := writeFile(t, "config.toml", "[propagation]\npolicy = \"sideways\"\n")
	_, err := execute(t, "--config", cfg, "run", in, "--seed", "coach")
	if !errors.Is(err, errors.ErrCodeInvalidPolicy) {
		t.Errorf("error = %v, want code %v", err, errors.ErrCodeInvalidPolicy)
	}
}

func TestDemo(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", nil, "Infected 15 of 30 nodes from 10"},
		{"all", []string{"--policy", "all"}, "Infected 21 of 30 nodes from 10"},
		{"atomic batch", []string{"--policy", "atomic", "-n", "11"}, "Infected 11 of 30 nodes from 10"},
		{"atomic too small", []string{"--policy", "atomic", "-n", "10"}, "Infected 0 of 30 nodes from 10"},
		{"isolated seed", []string{"--seed", "15"}, "Infected 1 of 30 nodes from 15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, append([]string{"demo"}, tt.args...)...)
			if err != nil {
				t.Fatalf("demo error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestDemoBadSeed(t *testing.T) {
	_, err := execute(t, "demo", "--seed", "30")
	if !errors.Is(err, errors.ErrCodeUnknownNode) {
		t.Errorf("error = %v, want code %v", err, errors.ErrCodeUnknownNode)
	}
}

func TestDemoGraph(t *testing.T) {
	g := demoGraph()
	if g.NodeCount() != 30 || g.EdgeCount() != 20 {
		t.Errorf("demo graph = %d nodes %d edges, want 30 20", g.NodeCount(), g.EdgeCount())
	}
	if len(g.Pupils(demoHub)) != 10 || len(g.Mentors(demoHub)) != 10 {
		t.Errorf("hub has %d pupils, %d mentors", len(g.Pupils(demoHub)), len(g.Mentors(demoHub)))
	}
}

func TestConfigCommand(t *testing.T) {
	got, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(got, "[propagation]") || !strings.Contains(got, "[store]") {
		t.Errorf("config output:\n%s", got)
	}

	got, err = execute(t, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), filepath.Join("infection", "config.toml")) {
		t.Errorf("config path = %q", got)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			got, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion error = %v", err)
			}
			if !strings.Contains(got, "infection") {
				t.Errorf("%s completion does not mention the command", shell)
			}
		})
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestVersionFlag(t *testing.T) {
	got, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if !strings.HasPrefix(got, "infection version ") {
		t.Errorf("--version = %q", got)
	}
}

func TestInstallMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := installMetrics()

	if _, ok := observability.Propagation().(*metrics.Metrics); !ok {
		t.Errorf("Propagation() = %T, want *metrics.Metrics", observability.Propagation())
	}
	if _, err := execute(t, "demo"); err != nil {
		t.Fatal(err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "infection_sessions_total" {
			found = true
		}
	}
	if !found {
		t.Error("infection_sessions_total not gathered after a demo session")
	}
}
