// Package server serves diagrams over HTTP for previews and editor
// integrations.
//
// Routes:
//
//	POST /render?input=json&format=svg   value source in, rendered artifact out
//	POST /dot?input=toml                 value source in, DOT text out
//	GET  /healthz                        liveness probe
//
// /render and /dot also accept name, rankdir and refs query parameters.
// Every rendered artifact carries an X-Artifact-Id header and an X-Cache
// header reporting whether it came from the cache.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/valplot/pkg/cache"
	"github.com/matzehuels/valplot/pkg/errors"
	"github.com/matzehuels/valplot/pkg/observability"
	"github.com/matzehuels/valplot/pkg/plot"
	"github.com/matzehuels/valplot/pkg/render"
	"github.com/matzehuels/valplot/pkg/source"
	"github.com/matzehuels/valplot/pkg/visualize"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:7878"

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 4 << 20

// Options configures a [Server].
type Options struct {
	// Engine is the layout engine name, see [render.Engines].
	Engine string
	// MaxDepth bounds value nesting, see [plot.WithMaxDepth].
	MaxDepth int
	// MaxBodyBytes limits request bodies. Defaults to [DefaultMaxBodyBytes].
	MaxBodyBytes int64

	Registry   *plot.Registry
	Logger     *log.Logger
	Cache      cache.Cache
	OpenEngine func(ctx context.Context, name string) (render.Engine, error)
}

// Server renders request bodies to diagrams. All requests share one layout
// engine, opened on first use.
type Server struct {
	opts   Options
	router chi.Router

	mu     sync.Mutex
	engine render.Engine
}

// New returns a server with its routes mounted.
func New(opts Options) (*Server, error) {
	if err := render.ValidateEngine(opts.Engine); err != nil {
		return nil, err
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Registry == nil {
		opts.Registry = plot.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.OpenEngine == nil {
		opts.OpenEngine = render.Open
	}

	s := &Server{opts: opts}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hooks)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/dot", s.handleDOT)
	s.router = r
	return s, nil
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.opts.Logger.Info("serving diagrams", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases the layout engine.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}

func (s *Server) layoutEngine(ctx context.Context) (render.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return s.engine, nil
	}
	e, err := s.opts.OpenEngine(ctx, s.opts.Engine)
	if err != nil {
		return nil, err
	}
	s.engine = e
	return e, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	src, err := s.source(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(render.FormatDOT))
	w.Write(src)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.DefaultFormat
	}
	if err := render.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	src, err := s.source(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	engine, err := s.layoutEngine(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifact, hit, err := visualize.Artifact(r.Context(), engine, src, format, s.opts.Cache)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("X-Artifact-Id", uuid.NewString())
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.Write(artifact)
}

// source decodes the request body and returns its DOT source.
func (s *Server) source(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	q := r.URL.Query()
	input := q.Get("input")
	if input == "" {
		input = source.FormatJSON
	}
	if err := source.ValidateFormat(input); err != nil {
		return nil, err
	}
	refs := false
	if v := q.Get("refs"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid refs parameter %q", v)
		}
		refs = b
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	value, err := source.Parse(r.Context(), body, input)
	if err != nil {
		return nil, err
	}

	src, _, err := visualize.Source(r.Context(), value, visualize.Options{
		Name:            q.Get("name"),
		RankDir:         q.Get("rankdir"),
		TrackReferences: refs,
		MaxDepth:        s.opts.MaxDepth,
		Registry:        s.opts.Registry,
		Logger:          s.opts.Logger,
	})
	return src, err
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Error-Code", string(code))
	w.WriteHeader(status)
	fmt.Fprintln(w, errors.UserMessage(err))
}

// StatusFor maps an error to an HTTP status code by its error code.
func StatusFor(err error) int {
	for _, m := range []struct {
		code   errors.Code
		status int
	}{
		{errors.ErrCodeMissingDependency, http.StatusServiceUnavailable},
		{errors.ErrCodeUnclassifiable, http.StatusUnprocessableEntity},
		{errors.ErrCodeMaxDepth, http.StatusUnprocessableEntity},
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidFormat, http.StatusBadRequest},
		{errors.ErrCodeInvalidName, http.StatusBadRequest},
		{errors.ErrCodeInvalidEngine, http.StatusBadRequest},
	} {
		if errors.Is(err, m.code) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// hooks reports requests and responses to the server hooks.
func hooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := observability.Server()
		h.OnRequest(r.Context(), r.Method, r.URL.Path)
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}
