package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
)

// Snapshot is the persisted outcome of one propagation session.
type Snapshot struct {
	ID        uuid.UUID        `json:"id" bson:"-"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	Policy    propagate.Policy `json:"policy" bson:"policy"`
	Seed      graph.NodeID     `json:"seed" bson:"seed"`
	SeedName  string           `json:"seed_name" bson:"seed_name"`
	Version   float64          `json:"version" bson:"version"`
	MaxCount  int              `json:"max_count" bson:"max_count"`
	Token     graph.Token      `json:"token" bson:"-"`
	Infected  []graph.NodeID   `json:"infected" bson:"infected"`
	Rejected  []graph.NodeID   `json:"rejected,omitempty" bson:"rejected,omitempty"`
	Exhausted bool             `json:"exhausted" bson:"exhausted"`
	Nodes     []NodeState      `json:"nodes" bson:"nodes"`
}

// NodeState is one node as it was when the snapshot was taken.
type NodeState struct {
	ID      graph.NodeID `json:"id" bson:"id"`
	Name    string       `json:"name" bson:"name"`
	Version float64      `json:"version" bson:"version"`
}

// NewSnapshot captures res and the current state of g under a fresh ID.
func NewSnapshot(g *graph.Graph, res propagate.Result, maxCount int) *Snapshot {
	s := &Snapshot{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Policy:    res.Policy,
		Seed:      res.Seed,
		Version:   res.Version,
		MaxCount:  maxCount,
		Token:     res.Token,
		Infected:  res.Infected,
		Rejected:  res.Rejected,
		Exhausted: res.Exhausted,
		Nodes:     States(g),
	}
	if g.Has(res.Seed) {
		s.SeedName = g.Name(res.Seed)
	}
	return s
}

// States returns the state of every node in g in ID order.
func States(g *graph.Graph) []NodeState {
	nodes := g.Nodes()
	out := make([]NodeState, len(nodes))
	for i, n := range nodes {
		out[i] = NodeState{ID: n.ID, Name: n.Name, Version: n.Version}
	}
	return out
}
