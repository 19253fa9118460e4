// Package propagate spreads a version value across a mentor/pupil graph.
//
// # Overview
//
// An [Engine] walks a [graph.Graph] breadth-first from a seed node and writes
// a new version onto every node it infects. Three policies are available:
//
//   - [Engine.PropagateAll]: flood the whole connected component
//   - [Engine.PropagateLimited]: flood, but stop the session once maxCount
//     nodes are infected
//   - [Engine.PropagateBoundedAtomic]: admit a node only together with its
//     entire pupil set, and only if the remaining budget covers all of them
//
// Every expansion step enqueues a node's pupils first, then its mentors, in
// the order they were connected. Edges are followed in both directions.
//
// # Sessions
//
// Each call is one session. The engine draws a fresh [graph.Token] from its
// [TokenSource] and tags every node it infects with it; a node whose tag
// already equals the session token is skipped. Tags from earlier sessions are
// never cleared, they simply stop matching.
//
// [NewSequence] (the default) draws from the graph's own session counter, so
// tokens are strictly increasing across every engine built over that graph and
// a stale tag can never match a later session. [NewCounter] keeps its own
// count and is only collision-free while a single engine uses the graph.
// [NewRandom] draws tokens from a seeded
// generator instead. Two sessions that draw the same random token share
// visited state: nodes still tagged from the earlier one are treated as
// already processed and are silently left at their old version.
//
// # Atomic Admission
//
// In the bounded atomic policy a candidate needs budget for itself plus all
// of its pupils. A candidate that does not fit is dropped for the rest of the
// session. It is not retried when budget is freed up later, though it is
// evaluated again if another infected node lists it as a neighbor. A node
// that is never rediscovered stays at its old version even if the remaining
// budget would have covered it.
//
// Calling PropagateBoundedAtomic with a negative maxCount panics with a
// [*PreconditionError]. Use [Engine.Run] to get an error instead.
//
// # Concurrency
//
// Engines perform no locking and have no suspension points. Callers must not
// run propagations concurrently with each other or with graph.Graph.Connect
// on the same graph.
package propagate
