package propagate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/observability"
)

var (
	// ErrUnknownPolicy is returned by [ParsePolicy] and [Engine.Run] for a
	// policy name other than "all", "limited" or "atomic".
	ErrUnknownPolicy = errors.New("unknown propagation policy")

	// ErrNegativeBudget is returned by [Engine.Run] when the atomic policy is
	// requested with a negative maxCount.
	ErrNegativeBudget = errors.New("atomic propagation requires a non-negative max count")
)

// Policy names a propagation strategy.
type Policy string

const (
	PolicyAll     Policy = "all"     // unbounded flood
	PolicyLimited Policy = "limited" // count-limited flood
	PolicyAtomic  Policy = "atomic"  // count-limited atomic-batch flood
)

// Policies lists every supported policy.
var Policies = []Policy{PolicyAll, PolicyLimited, PolicyAtomic}

// ParsePolicy converts a case-insensitive policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyAll, PolicyLimited, PolicyAtomic:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// unlimited is the internal budget value for sessions without a cap.
const unlimited = -1

// PreconditionError is the panic value raised when PropagateBoundedAtomic is
// called with a negative maxCount.
type PreconditionError struct {
	Op       string
	MaxCount int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("propagate: %s requires maxCount >= 0, got %d", e.Op, e.MaxCount)
}

// Result summarizes one propagation session.
type Result struct {
	Policy  Policy       `json:"policy"`
	Token   graph.Token  `json:"token"`
	Seed    graph.NodeID `json:"seed"`
	Version float64      `json:"version"`

	// Infected lists newly infected nodes in infection order.
	Infected []graph.NodeID `json:"infected"`
	// Admitted lists the candidates whose batch was committed by the atomic
	// policy, in admission order.
	Admitted []graph.NodeID `json:"admitted,omitempty"`
	// Rejected lists candidates that failed atomic admission, once per
	// rejection.
	Rejected []graph.NodeID `json:"rejected,omitempty"`
	// Exhausted is set when the session ended because the budget ran out
	// while nodes were still queued.
	Exhausted bool `json:"exhausted"`

	Duration time.Duration `json:"duration"`
}

// Count returns the number of infected nodes.
func (r Result) Count() int { return len(r.Infected) }

// Engine runs propagation sessions over a single graph.
//
// The zero value is not usable - use New.
type Engine struct {
	graph  *graph.Graph
	tokens TokenSource
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokens sets the session token source. A nil source is ignored.
func WithTokens(t TokenSource) Option {
	return func(e *Engine) {
		if t != nil {
			e.tokens = t
		}
	}
}

// WithLogger sets the logger used for session diagnostics. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over g. By default tokens come from [NewSequence]
// and diagnostics go to log.Default().
func New(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:  g,
		tokens: NewSequence(g),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine operates on.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Run dispatches to the operation named by p. A negative maxCount means
// unlimited for PolicyLimited and is ignored by PolicyAll. Unlike
// PropagateBoundedAtomic, Run reports a negative atomic budget as
// ErrNegativeBudget instead of panicking.
func (e *Engine) Run(p Policy, seed graph.NodeID, version float64, maxCount int) (Result, error) {
	switch p {
	case PolicyAll:
		return e.PropagateAll(seed, version), nil
	case PolicyLimited:
		return e.PropagateLimited(seed, version, maxCount), nil
	case PolicyAtomic:
		if maxCount < 0 {
			return Result{}, fmt.Errorf("%w: got %d", ErrNegativeBudget, maxCount)
		}
		return e.PropagateBoundedAtomic(seed, version, maxCount), nil
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, p)
}

// session holds the state of one propagation call.
type session struct {
	e       *Engine
	token   graph.Token
	budget  int // remaining infections, or unlimited
	start   time.Time
	result  Result
	version float64
}

func (e *Engine) begin(p Policy, seed graph.NodeID, version float64, budget int) *session {
	s := &session{
		e:       e,
		token:   e.tokens.Next(),
		budget:  budget,
		start:   time.Now(),
		version: version,
		result: Result{
			Policy:   p,
			Seed:     seed,
			Version:  version,
			Infected: []graph.NodeID{},
		},
	}
	s.result.Token = s.token

	e.logger.Debug("propagation started",
		"policy", p,
		"seed", seed,
		"token", s.token,
		"budget", budget)
	observability.Propagation().OnSessionStart(string(p), uint64(s.token), budget)
	return s
}

// visited reports whether id was already infected in this session.
func (s *session) visited(id graph.NodeID) bool {
	return s.e.graph.Tag(id) == s.token
}

// infect writes the session version and token onto id and spends one unit
// of budget.
func (s *session) infect(id graph.NodeID) {
	g := s.e.graph
	g.SetVersion(id, s.version)
	g.Mark(id, s.token)
	if s.budget > 0 {
		s.budget--
	}
	s.result.Infected = append(s.result.Infected, id)
	observability.Propagation().OnInfect(string(s.result.Policy), int(id))
}

func (s *session) reject(id graph.NodeID, need int) {
	s.result.Rejected = append(s.result.Rejected, id)
	s.e.logger.Debug("candidate rejected",
		"node", id,
		"need", need,
		"remaining", s.budget)
	observability.Propagation().OnReject(string(s.result.Policy), int(id), need, s.budget)
}

func (s *session) finish() Result {
	s.result.Duration = time.Since(s.start)
	s.e.logger.Debug("propagation finished",
		"policy", s.result.Policy,
		"token", s.token,
		"infected", len(s.result.Infected),
		"rejected", len(s.result.Rejected),
		"exhausted", s.result.Exhausted,
		"duration", s.result.Duration)
	observability.Propagation().OnSessionComplete(string(s.result.Policy), len(s.result.Infected), s.result.Duration)
	return s.result
}
