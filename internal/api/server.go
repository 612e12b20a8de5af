// Package api serves thickness queries over HTTP.
//
// Routes:
//
//	POST /v1/thickness   {"edges": [[1,2],...], "start_pages": 1, "max_pages": 0}
//	POST /v1/embeddings  {"edges": [[1,2],...], "pages": 2, "spines": [[1,2,3]]}
//	GET  /v1/spines/{n}  ?list=true to include the spines
//	GET  /healthz
//	GET  /version
//	GET  /metrics
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with the error code and message; validation failures map to 400, timeouts
// and cancellations to 504.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bookthickness/pkg/pipeline"
)

const (
	defaultRequestTimeout = time.Minute
	defaultMaxVertices    = 12
	maxBodyBytes          = 1 << 20
	shutdownGrace         = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// RequestTimeout bounds each query; zero means one minute.
	RequestTimeout time.Duration
	// MaxVertices rejects larger graphs; zero means 12.
	MaxVertices int
	// Defaults seeds the per-request query options (engine, workers, limits).
	Defaults pipeline.Options
	// Metrics, when set, is served on /metrics.
	Metrics *Metrics
}

// Server is the HTTP front end of a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New builds a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxVertices <= 0 {
		opts.MaxVertices = defaultMaxVertices
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/thickness", s.handleThickness)
		r.Post("/embeddings", s.handleEmbeddings)
		r.Get("/spines/{n}", s.handleSpines)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path}, RequestID: RequestID(r.Context())})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
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

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
