package propagate

import "github.com/matzehuels/infection/pkg/graph"

// PropagateBoundedAtomic infects at most maxCount nodes, admitting each
// candidate only together with all of its pupils.
//
// Candidates are drawn from a queue seeded with seed. A candidate is admitted
// when its pupil count plus one fits in the remaining budget; the candidate
// and its pupils then form a batch that is infected in one pass, and every
// node infected by the batch pushes its pupils and then its mentors onto the
// candidate queue. A candidate that does not fit is dropped without being
// marked, so it is only reconsidered if it is queued again through another
// infected neighbor.
//
// The session ends when the candidate queue is empty or when an unvisited
// candidate is reached with no budget left. PropagateBoundedAtomic panics with a *PreconditionError if maxCount
// is negative.
func (e *Engine) PropagateBoundedAtomic(seed graph.NodeID, version float64, maxCount int) Result {
	if maxCount < 0 {
		panic(&PreconditionError{Op: "PropagateBoundedAtomic", MaxCount: maxCount})
	}

	g := e.graph
	s := e.begin(PolicyAtomic, seed, version, maxCount)

	candidates := []graph.NodeID{seed}
	var batch []graph.NodeID
	for head := 0; head < len(candidates); head++ {
		c := candidates[head]
		if s.visited(c) {
			continue
		}
		if s.budget == 0 {
			s.result.Exhausted = true
			break
		}

		pupils := g.Pupils(c)
		if need := len(pupils) + 1; need > s.budget {
			s.reject(c, need)
			continue
		}

		s.result.Admitted = append(s.result.Admitted, c)
		batch = append(batch[:0], c)
		batch = append(batch, pupils...)
		for _, id := range batch {
			if s.visited(id) {
				continue
			}
			s.infect(id)
			candidates = append(candidates, g.Pupils(id)...)
			candidates = append(candidates, g.Mentors(id)...)
		}
	}

	return s.finish()
}
