// Package pkg provides the libraries behind the infection tool.
//
// # Overview
//
// Infection rolls a new version out across a graph of mentor/pupil
// relationships. A session starts at one seed node and floods outward,
// either without limit or bounded by a count that can keep every mentor
// together with all of their pupils.
//
//  1. [graph] - Node arena and mentor/pupil edges
//  2. [propagate] - The three propagation policies and session tokens
//  3. [io] - JSON graph files
//  4. [render/nodelink] - Graphviz diagrams of a graph's current state
//  5. [store] - Snapshot persistence (file, Redis, MongoDB)
//  6. [server] - HTTP API over a single graph
//  7. [config], [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
//	GRAPH.json
//	     ↓
//	[io] package (load nodes and edges)
//	     ↓
//	[graph] package (arena of nodes)
//	     ↓
//	[propagate] package (one session: all, limited or atomic)
//	     ↓
//	state JSON, DOT/SVG diagram, stored snapshot
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/infection/pkg/graph"
//	    "github.com/matzehuels/infection/pkg/propagate"
//	)
//
//	g := graph.New()
//	coach := g.AddNamedNode("coach", 1)
//	ann := g.AddNamedNode("ann", 1)
//	g.Connect(coach, ann)
//
//	res := propagate.New(g).PropagateBoundedAtomic(coach, 2, 5)
//	fmt.Println(res.Infected) // [0 1]
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/graph
// [propagate]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/propagate
// [io]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/render/nodelink
// [store]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/infection/pkg/buildinfo
package pkg
