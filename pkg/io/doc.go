// Package io provides JSON import and export for mentor/pupil graphs.
//
// # JSON Format
//
// The format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "coach", "version": 1.0},
//	    {"id": "ann"},
//	    {"id": "bob"}
//	  ],
//	  "edges": [
//	    {"mentor": "coach", "pupil": "ann"},
//	    {"mentor": "coach", "pupil": "bob"}
//	  ]
//	}
//
// Node ids are names, not graph.NodeID values: nodes are added to the graph
// in file order, so the n-th node receives NodeID n-1. A missing version is
// 0. Edges are applied with graph.Graph.Connect in file order, so repeated
// edges collapse into one.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader. Errors carry codes from pkg/errors:
//
//   - FILE_NOT_FOUND: the file does not exist
//   - INVALID_FORMAT: malformed JSON
//   - INVALID_GRAPH: empty, duplicate or unprintable node ids, non-finite versions
//   - UNKNOWN_NODE: an edge names a node that is not declared
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] to write the current state of a graph. The
// output is a valid input, so the result of one run can seed the next.
package io
