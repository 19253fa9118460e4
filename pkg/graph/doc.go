// Package graph provides the mentor/pupil graph that versions propagate over.
//
// # Overview
//
// A [Graph] is an arena of [Node] values addressed by [NodeID]. A NodeID is
// both the handle callers pass around and the node's stable identifier: it is
// the arena index assigned by [Graph.AddNode] and is never reassigned. Edges
// are stored as NodeID slices on both endpoints, so there are no pointer
// cycles between nodes.
//
// # Building Graphs
//
// Create nodes with [Graph.AddNode] (or [Graph.AddNamedNode]) and connect
// them with [Graph.Connect]:
//
//	g := graph.New()
//	coach := g.AddNamedNode("coach", 1.0)
//	student := g.AddNamedNode("student", 1.0)
//	g.Connect(coach, student)
//
// Connect is idempotent and keeps both directions in sync: after
// Connect(m, p), p appears exactly once in m's pupils and m appears exactly
// once in p's mentors. Connecting a node to itself is allowed but
// degenerate.
//
// # Visit Tags
//
// Every node carries a transient [Token] used by the propagation engine to
// recognize nodes it already processed during the current session. Tags are
// written with [Graph.Mark] and read with [Graph.Tag]; nothing outside a
// propagation engine should call Mark. The zero Token means "never visited".
//
// # Handles
//
// Traversal queues hold NodeIDs, not copies of nodes. A write through one
// handle is observed by every other occurrence of that handle. Passing a
// NodeID that was not returned by this graph's AddNode is a programming
// error and panics.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must serialize
// Connect and every propagation call that touches the same graph.
package graph
