package propagate

import "github.com/matzehuels/infection/pkg/graph"

// PropagateAll sets version on every node connected to seed, in either edge
// direction. Nodes are infected in breadth-first order starting with seed;
// each infected node enqueues its pupils and then its mentors.
func (e *Engine) PropagateAll(seed graph.NodeID, version float64) Result {
	return e.flood(PolicyAll, seed, version, unlimited)
}

// PropagateLimited behaves like PropagateAll but infects at most maxCount
// nodes. When the budget is spent and another unvisited node is dequeued,
// the whole session stops and the rest of the queue is abandoned. A
// negative maxCount means unlimited.
//
// Which nodes are infected depends only on breadth-first order. A node may
// end up infected while some of its pupils are not.
func (e *Engine) PropagateLimited(seed graph.NodeID, version float64, maxCount int) Result {
	if maxCount < 0 {
		maxCount = unlimited
	}
	return e.flood(PolicyLimited, seed, version, maxCount)
}

func (e *Engine) flood(p Policy, seed graph.NodeID, version float64, budget int) Result {
	g := e.graph
	s := e.begin(p, seed, version, budget)

	queue := []graph.NodeID{seed}
	for head := 0; head < len(queue); head++ {
		id := queue[head]
		if s.visited(id) {
			continue
		}
		if s.budget == 0 {
			s.result.Exhausted = true
			break
		}
		s.infect(id)
		queue = append(queue, g.Pupils(id)...)
		queue = append(queue, g.Mentors(id)...)
	}

	return s.finish()
}
