package propagate

import (
	"math/rand/v2"

	"github.com/matzehuels/infection/pkg/graph"
)

// TokenSource issues session tokens. Next must never return the zero token.
type TokenSource interface {
	Next() graph.Token
}

// Sequence issues tokens from a graph's own session counter, so engines
// sharing a graph never draw the same token. It is the engine default.
type Sequence struct {
	g *graph.Graph
}

// NewSequence creates a token source bound to g.
func NewSequence(g *graph.Graph) *Sequence { return &Sequence{g: g} }

// Next returns g's next session token.
func (s *Sequence) Next() graph.Token { return s.g.NextSession() }

// Counter issues strictly increasing tokens starting at 1. Tokens are unique
// only among sessions drawing from the same Counter.
// It is not safe for concurrent use.
type Counter struct {
	last graph.Token
}

// NewCounter creates a counter whose first token is 1.
func NewCounter() *Counter { return &Counter{} }

// Next returns the next token in sequence.
func (c *Counter) Next() graph.Token {
	c.last++
	if c.last == 0 {
		c.last = 1
	}
	return c.last
}

// Random issues pseudo-random tokens from a seeded PCG generator.
// Distinct sessions may draw the same token; see the package documentation.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random token source. Equal seeds yield equal sequences.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a non-zero random token.
func (r *Random) Next() graph.Token {
	for {
		if t := graph.Token(r.rng.Uint64()); t != 0 {
			return t
		}
	}
}

var (
	_ TokenSource = (*Sequence)(nil)
	_ TokenSource = (*Counter)(nil)
	_ TokenSource = (*Random)(nil)
)
