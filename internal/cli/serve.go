package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/infection/pkg/errors"
	graphio "github.com/matzehuels/infection/pkg/io"
	"github.com/matzehuels/infection/pkg/observability"
	"github.com/matzehuels/infection/pkg/observability/metrics"
	"github.com/matzehuels/infection/pkg/server"
	"github.com/matzehuels/infection/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve GRAPH.json",
		Short: "Serve a graph over HTTP",
		Long: `Load GRAPH.json and serve it over HTTP until interrupted.

Endpoints:
  GET  /healthz
  GET  /nodes
  GET  /nodes/{id}
  POST /propagate       {"policy": "limited", "seed": "coach", "version": 2, "max_count": 10}
  GET  /snapshots/{id}

Snapshots go to the store configured under [store]. Prometheus metrics are
served at /metrics unless [server] metrics = false.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}

			g, err := graphio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), "Serving %s", args[0])
			printStats(cmd.OutOrStdout(), g)

			s, err := store.Open(ctx, c.cfg.Store)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "open %s store", c.cfg.Store.Backend)
			}
			defer s.Close()

			opts := []server.Option{
				server.WithStore(s),
				server.WithLogger(logger),
				server.WithTokens(c.cfg.Propagation.TokenSource(g)),
				server.WithDefaults(c.cfg.Propagation),
			}
			if c.cfg.Server.Metrics {
				opts = append(opts, server.WithMetrics(installMetrics()))
			}
			return server.New(g, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

// installMetrics registers the Prometheus hooks and returns their registry.
func installMetrics() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	observability.SetPropagationHooks(m)
	observability.SetHTTPHooks(m)
	return reg
}
