package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/infection/pkg/config"
	"github.com/matzehuels/infection/pkg/errors"
	"github.com/matzehuels/infection/pkg/graph"
	graphio "github.com/matzehuels/infection/pkg/io"
	"github.com/matzehuels/infection/pkg/propagate"
	"github.com/matzehuels/infection/pkg/render/nodelink"
	"github.com/matzehuels/infection/pkg/store"
)

// sessionFlags are the propagation flags shared by run and demo. Values
// only override the configuration when the flag was set explicitly.
type sessionFlags struct {
	policy   string
	version  float64
	maxCount int
	tokens   string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.policy, "policy", "p", "", "propagation policy: all, limited, atomic (default from config)")
	cmd.Flags().Float64Var(&f.version, "version", 0, "version written onto infected nodes (default from config)")
	cmd.Flags().IntVarP(&f.maxCount, "max-count", "n", 0, "infection budget; negative means unlimited (default from config)")
	cmd.Flags().StringVar(&f.tokens, "tokens", "", "session token source: counter, random (default from config)")
}

// resolve layers explicitly set flags over base and validates the result.
func (f *sessionFlags) resolve(cmd *cobra.Command, base config.Propagation) (config.Propagation, propagate.Policy, error) {
	p := base
	flags := cmd.Flags()
	if flags.Changed("policy") {
		p.Policy = f.policy
	}
	if flags.Changed("version") {
		p.Version = f.version
	}
	if flags.Changed("max-count") {
		p.MaxCount = f.maxCount
	}
	if flags.Changed("tokens") {
		p.Tokens = f.tokens
	}

	policy, err := propagate.ParsePolicy(p.Policy)
	if err != nil {
		return p, "", errors.Wrap(errors.ErrCodeInvalidPolicy, err, "--policy")
	}
	p.Policy = string(policy)
	if policy == propagate.PolicyAtomic && p.MaxCount < 0 {
		return p, "", errors.New(errors.ErrCodeInvalidInput, "--max-count must be >= 0 for the atomic policy, got %d", p.MaxCount)
	}
	if err := errors.ValidateVersion(p.Version); err != nil {
		return p, "", err
	}
	switch p.Tokens {
	case config.TokensCounter, config.TokensRandom:
	default:
		return p, "", errors.New(errors.ErrCodeInvalidInput, "--tokens must be %q or %q, got %q", config.TokensCounter, config.TokensRandom, p.Tokens)
	}
	return p, policy, nil
}

// outputFlags select the files written after a session.
type outputFlags struct {
	out      string
	dot      string
	svg      string
	detailed bool
	save     bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the resulting graph state as JSON")
	cmd.Flags().StringVar(&f.dot, "dot", "", "write a Graphviz DOT diagram")
	cmd.Flags().StringVar(&f.svg, "svg", "", "write an SVG diagram")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "include ids and versions in diagrams")
	cmd.Flags().BoolVar(&f.save, "save", false, "save a snapshot to the configured store")
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var (
		seed    string
		session sessionFlags
		output  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "run GRAPH.json",
		Short: "Propagate a new version from a seed node",
		Long: `Run one propagation session over the graph in GRAPH.json.

The file lists nodes and mentor/pupil edges:

  {"nodes": [{"id": "coach", "version": 1}, {"id": "ann"}],
   "edges": [{"mentor": "coach", "pupil": "ann"}]}

Policies:
  all      infect the whole connected group of the seed
  limited  stop after --max-count infections
  atomic   stay within --max-count and never split a mentor from its pupils`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, policy, err := session.resolve(cmd, c.cfg.Propagation)
			if err != nil {
				return err
			}
			return c.runSession(cmd.Context(), cmd.OutOrStdout(), args[0], seed, p, policy, output)
		},
	}

	cmd.Flags().StringVarP(&seed, "seed", "s", "", "name of the node to start from (required)")
	_ = cmd.MarkFlagRequired("seed")
	session.register(cmd)
	output.register(cmd)

	return cmd
}

func (c *CLI) runSession(ctx context.Context, w io.Writer, path, seedName string, p config.Propagation, policy propagate.Policy, output outputFlags) error {
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	g, err := graphio.ImportJSON(path)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d nodes", g.NodeCount()))

	seed, ok := g.Lookup(seedName)
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode, "seed %q is not in %s", seedName, path)
	}

	res, err := c.propagate(ctx, w, g, seed, p, policy, output)
	if err != nil {
		return err
	}
	logger.Debug("session complete", "infected", res.Count(), "duration", res.Duration)
	return nil
}

// propagate runs one session on g, reports it and writes the requested
// outputs.
func (c *CLI) propagate(ctx context.Context, w io.Writer, g *graph.Graph, seed graph.NodeID, p config.Propagation, policy propagate.Policy, output outputFlags) (propagate.Result, error) {
	logger := loggerFromContext(ctx)
	engine := propagate.New(g, propagate.WithTokens(p.TokenSource(g)), propagate.WithLogger(logger))

	res, err := engine.Run(policy, seed, p.Version, p.MaxCount)
	if err != nil {
		return res, errors.Wrap(errors.ErrCodeInvalidInput, err, "propagate")
	}

	printResult(w, g, res, p.MaxCount)
	if err := c.writeOutputs(ctx, w, g, res, p.MaxCount, output); err != nil {
		return res, err
	}
	return res, nil
}

func printResult(w io.Writer, g *graph.Graph, res propagate.Result, maxCount int) {
	printSuccess(w, "Infected %s of %s nodes from %s",
		StyleNumber.Render(strconv.Itoa(res.Count())),
		StyleNumber.Render(strconv.Itoa(g.NodeCount())),
		StyleValue.Render(g.Name(res.Seed)))
	printStats(w, g)
	printNodes(w, g, res.Infected)

	printKeyValue(w, "policy", string(res.Policy))
	printKeyValue(w, "version", strconv.FormatFloat(res.Version, 'g', -1, 64))
	if res.Policy != propagate.PolicyAll {
		budget := "unlimited"
		if maxCount >= 0 {
			budget = strconv.Itoa(maxCount)
		}
		printKeyValue(w, "max count", budget)
	}
	printKeyValue(w, "token", strconv.FormatUint(uint64(res.Token), 10))
	printKeyValue(w, "duration", res.Duration.String())

	if len(res.Rejected) > 0 {
		printWarning(w, "%d candidate(s) rejected: their classroom did not fit the remaining budget", len(res.Rejected))
		for _, id := range res.Rejected {
			printDetail(w, "%s needs %d", g.Name(id), len(g.Pupils(id))+1)
		}
	}
	if res.Exhausted {
		printInfo(w, "budget exhausted before the group was fully reached")
	}
}

func (c *CLI) writeOutputs(ctx context.Context, w io.Writer, g *graph.Graph, res propagate.Result, maxCount int, output outputFlags) error {
	if output.out != "" {
		if err := graphio.ExportJSON(g, output.out); err != nil {
			return err
		}
		printFile(w, output.out)
	}

	if output.dot != "" || output.svg != "" {
		title := fmt.Sprintf("%s from %s (version %s)", res.Policy, g.Name(res.Seed), strconv.FormatFloat(res.Version, 'g', -1, 64))
		dot := nodelink.ToDOT(g, nodelink.Options{
			Detailed:  output.detailed,
			Highlight: &res.Version,
			Title:     title,
		})
		if output.dot != "" {
			if err := os.WriteFile(output.dot, []byte(dot), 0644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output.dot)
			}
			printFile(w, output.dot)
		}
		if output.svg != "" {
			prog := newProgress(loggerFromContext(ctx))
			svg, err := nodelink.RenderSVG(dot)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
			}
			if err := os.WriteFile(output.svg, svg, 0644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output.svg)
			}
			prog.done("Rendered SVG")
			printFile(w, output.svg)
		}
	}

	if output.save {
		id, err := c.saveSnapshot(ctx, g, res, maxCount)
		if err != nil {
			return err
		}
		printKeyValue(w, "snapshot", id)
	}
	return nil
}

func (c *CLI) saveSnapshot(ctx context.Context, g *graph.Graph, res propagate.Result, maxCount int) (string, error) {
	if c.cfg.Store.Backend == config.BackendNone {
		return "", errors.New(errors.ErrCodeInvalidConfig, "--save needs a store; set [store] backend in the config file")
	}
	s, err := store.Open(ctx, c.cfg.Store)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "open %s store", c.cfg.Store.Backend)
	}
	defer s.Close()

	snap := store.NewSnapshot(g, res, maxCount)
	if err := s.Save(ctx, snap); err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "save snapshot")
	}
	loggerFromContext(ctx).Debug("snapshot saved", "backend", c.cfg.Store.Backend, "id", snap.ID)
	return snap.ID.String(), nil
}
