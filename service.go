package route

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Service binds a Router to HTTP. It implements http.Handler.
type Service struct {
	router     *Router
	errors     *ErrorPipeline
	codec      Codec
	validator  BodyValidator
	logger     *slog.Logger
	middleware []Middleware
	dispatcher *Dispatcher

	addr      string
	basePath  string
	bodyLimit int64

	mu     sync.Mutex
	onStop []func(ctx context.Context)
}

// Option configures a Service.
type Option func(*Service)

// WithCodec sets the body codec. The default is a JSONCodec.
func WithCodec(c Codec) Option {
	return func(s *Service) {
		s.codec = c
	}
}

// WithLogger sets the logger used for unhandled errors and server lifecycle.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithBodyValidator replaces the struct-tag body validator. Pass nil to
// disable it.
func WithBodyValidator(v BodyValidator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithAddr sets the listen address used by ListenAndServe.
func WithAddr(addr string) Option {
	return func(s *Service) {
		s.addr = addr
	}
}

// WithBasePath mounts every endpoint under path.
func WithBasePath(path string) Option {
	return func(s *Service) {
		s.basePath = "/" + strings.Trim(path, "/")
		if s.basePath == "/" {
			s.basePath = ""
		}
	}
}

// WithBodyLimit caps request bodies at n bytes. Larger bodies fail with 413.
func WithBodyLimit(n int64) Option {
	return func(s *Service) {
		s.bodyLimit = n
	}
}

// New creates a Service with the given options.
func New(opts ...Option) *Service {
	s := &Service{
		router:    NewRouter(),
		codec:     NewJSONCodec(),
		validator: NewStructValidator(),
		logger:    slog.Default(),
		addr:      ":3000",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errors = NewErrorPipeline(s.logger)
	s.dispatcher = NewDispatcher(s.router, s.errors, s.codec, s.validator, s.logger)
	return s
}

// Router returns the root router.
func (s *Service) Router() *Router { return s.router }

// Routes calls fn with the root router and returns s.
func (s *Service) Routes(fn func(r *Router)) *Service {
	fn(s.router)
	return s
}

// Errors returns the error pipeline for handler registration.
func (s *Service) Errors() *ErrorPipeline { return s.errors }

// Codec returns the body codec.
func (s *Service) Codec() Codec { return s.codec }

// Use adds HTTP middleware around the dispatcher. Middleware is applied in
// the order added.
func (s *Service) Use(mw ...Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// OnStop registers fn to run after the server has shut down.
func (s *Service) OnStop(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStop = append(s.onStop, fn)
}

// Dispatch serves an exchange from any transport.
func (s *Service) Dispatch(ex Exchange) Response {
	return s.dispatcher.Dispatch(ex)
}

// ServeHTTP implements http.Handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(http.HandlerFunc(s.serve))
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

func (s *Service) serve(w http.ResponseWriter, req *http.Request) {
	if s.bodyLimit > 0 && req.Body != nil {
		req.Body = http.MaxBytesReader(w, req.Body, s.bodyLimit)
	}

	path, ok := s.strip(req.URL.Path)
	ex := NewExchange(req, path)

	var resp Response
	if ok {
		resp = s.Dispatch(ex)
	} else {
		resp = notFound(ex)
	}

	if err := Render(NewSink(w), resp, s.codec); err != nil {
		s.logger.LogAttrs(req.Context(), slog.LevelError, "render response",
			slog.String("error", err.Error()),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		)
		if errors.Is(err, ErrEncodeResponse) {
			//nolint:errcheck,gosec // best-effort fallback
			Render(NewSink(w), ServerError(http.StatusText(http.StatusInternalServerError)), s.codec)
		}
	}
}

// strip removes the base path from path.
func (s *Service) strip(path string) (string, bool) {
	if s.basePath == "" {
		return path, true
	}
	if path == s.basePath {
		return "/", true
	}
	if rest, ok := strings.CutPrefix(path, s.basePath+"/"); ok {
		return "/" + rest, true
	}
	return path, false
}

// ListenAndServe starts an HTTP server on the configured address.
// It blocks until the context is cancelled, then shuts down gracefully
// and runs the OnStop callbacks.
func (s *Service) ListenAndServe(ctx context.Context) error {
	s.router.freeze()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.addr), slog.String("base_path", s.basePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		s.mu.Lock()
		stops := append([]func(context.Context){}, s.onStop...)
		s.mu.Unlock()
		for _, fn := range stops {
			fn(shutdownCtx)
		}
		return err
	}
}
