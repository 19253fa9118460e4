// Package nodelink renders mentor/pupil graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	v := 2.0
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true, Highlight: &v})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the node id and current version
//   - Highlight: nodes at exactly this version are filled, which makes the
//     reach of the last propagation visible at a glance
//   - Title: optional graph label
//
// Edges point from mentor to pupil and the layout runs top to bottom, so
// mentors sit above their pupils.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
