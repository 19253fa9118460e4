package graph

import (
	"fmt"
	"slices"
	"strconv"
)

// NodeID identifies a node within a single Graph. It doubles as the handle
// passed to every accessor.
type NodeID int

// String returns the decimal form of the ID.
func (id NodeID) String() string { return strconv.Itoa(int(id)) }

// Token is a propagation session marker. The zero value is never issued
// by a session and marks nodes that were never visited.
type Token uint64

// Node is a vertex of the mentor/pupil graph.
//
// The zero value is not usable - nodes are created by Graph.AddNode.
type Node struct {
	ID      NodeID  // Arena index, assigned once
	Name    string  // Display label (defaults to the decimal ID)
	Version float64 // Value being propagated

	tag     Token
	mentors []NodeID
	pupils  []NodeID
}

// Graph is an arena of nodes joined by symmetric mentor/pupil edges.
// The zero value is an empty graph ready for use.
type Graph struct {
	nodes  []*Node
	byName map[string]NodeID
	edges  int
	last   Token // last token issued by NextSession
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byName: make(map[string]NodeID)}
}

// AddNode creates a node with the given initial version and empty edge sets.
// Its name defaults to the decimal form of the returned ID.
func (g *Graph) AddNode(version float64) NodeID {
	return g.AddNamedNode("", version)
}

// AddNamedNode creates a node with a display name. An empty name defaults to
// the decimal ID. Names are indexed for Lookup; when two nodes share a name
// the first one wins.
func (g *Graph) AddNamedNode(name string, version float64) NodeID {
	id := NodeID(len(g.nodes))
	if name == "" {
		name = id.String()
	}
	g.nodes = append(g.nodes, &Node{ID: id, Name: name, Version: version})
	if g.byName == nil {
		g.byName = make(map[string]NodeID)
	}
	if _, exists := g.byName[name]; !exists {
		g.byName[name] = id
	}
	return id
}

// Connect records mentor as a mentor of pupil. Each direction is appended
// only if it is not already present, so repeated calls are no-ops.
// A self-loop is accepted; the node then lists itself once on each side.
func (g *Graph) Connect(mentor, pupil NodeID) {
	m, p := g.node(mentor), g.node(pupil)
	added := false
	if !slices.Contains(m.pupils, pupil) {
		m.pupils = append(m.pupils, pupil)
		added = true
	}
	if !slices.Contains(p.mentors, mentor) {
		p.mentors = append(p.mentors, mentor)
		added = true
	}
	if added {
		g.edges++
	}
}

// node returns the node behind id, panicking on a foreign or stale handle.
func (g *Graph) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(fmt.Sprintf("graph: invalid node handle %d", id))
	}
	return g.nodes[id]
}

// Has reports whether id is a valid handle for this graph.
func (g *Graph) Has(id NodeID) bool { return id >= 0 && int(id) < len(g.nodes) }

// Node returns the node behind id. The pointer refers to the arena entry,
// so writes to Version or Name are visible to the graph.
func (g *Graph) Node(id NodeID) *Node { return g.node(id) }

// ID returns the node's identifier.
func (g *Graph) ID(id NodeID) NodeID { return g.node(id).ID }

// Name returns the node's display name.
func (g *Graph) Name(id NodeID) string { return g.node(id).Name }

// Version returns the node's current version.
func (g *Graph) Version(id NodeID) float64 { return g.node(id).Version }

// SetVersion overwrites the node's version.
func (g *Graph) SetVersion(id NodeID, v float64) { g.node(id).Version = v }

// Tag returns the session token last written to the node.
func (g *Graph) Tag(id NodeID) Token { return g.node(id).tag }

// Mark sets the node's session token. Only propagation engines should call it.
func (g *Graph) Mark(id NodeID, t Token) { g.node(id).tag = t }

// NextSession advances the graph's session counter and returns the new
// token. Tokens from one graph are strictly increasing and never zero, no
// matter how many engines draw from it.
func (g *Graph) NextSession() Token {
	g.last++
	if g.last == 0 {
		g.last = 1
	}
	return g.last
}

// Mentors returns the nodes this node was connected under, in insertion order.
// The returned slice must not be modified.
func (g *Graph) Mentors(id NodeID) []NodeID { return g.node(id).mentors }

// Pupils returns the nodes this node mentors, in insertion order.
// The returned slice must not be modified.
func (g *Graph) Pupils(id NodeID) []NodeID { return g.node(id).pupils }

// Lookup returns the first node registered under name.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct mentor/pupil pairs.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns all nodes in ID order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Component returns every node reachable from seed through mentor or pupil
// edges in either direction, seed included, in breadth-first order
// (pupils before mentors). Visit tags are neither read nor written.
func (g *Graph) Component(seed NodeID) []NodeID {
	g.node(seed)
	seen := make([]bool, len(g.nodes))
	seen[seed] = true
	order := []NodeID{seed}
	for i := 0; i < len(order); i++ {
		n := g.nodes[order[i]]
		for _, next := range slices.Concat(n.pupils, n.mentors) {
			if !seen[next] {
				seen[next] = true
				order = append(order, next)
			}
		}
	}
	return order
}
