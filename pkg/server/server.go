// Package server exposes one mentor/pupil graph over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness probe
//	GET  /nodes            every node with its current version
//	GET  /nodes/{id}       one node with its mentors and pupils
//	POST /propagate        run a propagation session
//	GET  /snapshots/{id}   a stored session snapshot
//	GET  /metrics          Prometheus metrics, when enabled with WithMetrics
//
// The graph and engine are single-threaded, so the server holds a mutex
// around every handler that touches them. Errors are JSON objects of the
// form {"code": "UNKNOWN_NODE", "error": "..."}.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/infection/pkg/config"
	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
	"github.com/matzehuels/infection/pkg/store"
)

const shutdownTimeout = 5 * time.Second

// Server serves a single graph.
type Server struct {
	mu       sync.Mutex
	graph    *graph.Graph
	engine   *propagate.Engine
	store    store.Store
	defaults config.Propagation
	logger   *log.Logger
	metrics  prometheus.Gatherer
	router   chi.Router
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	store    store.Store
	logger   *log.Logger
	tokens   propagate.TokenSource
	defaults config.Propagation
	metrics  prometheus.Gatherer
}

// WithStore sets where snapshots are saved. The default discards them.
// A nil store is ignored.
func WithStore(s store.Store) Option {
	return func(o *serverOptions) {
		if s != nil {
			o.store = s
		}
	}
}

// WithLogger sets the request and session logger. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTokens sets the engine's session token source.
func WithTokens(t propagate.TokenSource) Option {
	return func(o *serverOptions) { o.tokens = t }
}

// WithDefaults sets the values used for fields a propagate request omits.
func WithDefaults(p config.Propagation) Option {
	return func(o *serverOptions) { o.defaults = p }
}

// WithMetrics serves the metrics gathered by g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *serverOptions) { o.metrics = g }
}

// New creates a server over g.
func New(g *graph.Graph, opts ...Option) *Server {
	o := serverOptions{
		store:    store.NewNullStore(),
		logger:   log.Default(),
		defaults: config.Default().Propagation,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		graph:    g,
		engine:   propagate.New(g, propagate.WithTokens(o.tokens), propagate.WithLogger(o.logger)),
		store:    o.store,
		defaults: o.defaults,
		logger:   o.logger,
		metrics:  o.metrics,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.handleNodes)
		r.Get("/{id}", s.handleNode)
	})
	r.Post("/propagate", s.handlePropagate)
	r.Get("/snapshots/{id}", s.handleSnapshot)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
