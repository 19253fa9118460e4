package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infection/pkg/errors"
	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
)

// Demo scenario defaults.
const (
	demoNodes    = 30
	demoHub      = 10
	demoMaxCount = 15
	demoVersion  = 1.0
)

// demoGraph builds the hub scenario: node 10 mentors nodes 0-9 and is a
// pupil of nodes 20-29, nodes 11-19 are isolated. Every node starts at
// version 0 and is named by its id.
func demoGraph() *graph.Graph {
	g := graph.New()
	ids := make([]graph.NodeID, demoNodes)
	for i := range ids {
		ids[i] = g.AddNode(0)
	}
	for i := 0; i < 10; i++ {
		g.Connect(ids[demoHub], ids[i])
	}
	for i := 20; i < demoNodes; i++ {
		g.Connect(ids[i], ids[demoHub])
	}
	return g
}

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		seed    int
		session sessionFlags
		output  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in 30-node hub scenario",
		Long: fmt.Sprintf(`Run a propagation session on a built-in graph of %d nodes.

Node %d mentors nodes 0-9 and is a pupil of nodes 20-29; nodes 11-19 have
no relationships. Unless overridden, the session uses the limited policy
with --max-count %d and writes version %g.`, demoNodes, demoHub, demoMaxCount, demoVersion),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.cfg.Propagation
			base.Policy = string(propagate.PolicyLimited)
			base.MaxCount = demoMaxCount
			base.Version = demoVersion

			p, policy, err := session.resolve(cmd, base)
			if err != nil {
				return err
			}

			g := demoGraph()
			if !g.Has(graph.NodeID(seed)) {
				return errors.New(errors.ErrCodeUnknownNode, "--seed must be between 0 and %d, got %d", demoNodes-1, seed)
			}
			_, err = c.propagate(cmd.Context(), cmd.OutOrStdout(), g, graph.NodeID(seed), p, policy, output)
			return err
		},
	}

	cmd.Flags().IntVarP(&seed, "seed", "s", demoHub, "id of the node to start from")
	session.register(cmd)
	output.register(cmd)

	return cmd
}
