package route

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
)

// ErrorHandlerFunc converts an error into a response.
type ErrorHandlerFunc func(r *Request, err error) Response

type ifaceHandler struct {
	typ    reflect.Type
	handle func(r *Request, err error) (Response, bool)
}

// ErrorPipeline maps errors to responses. Handlers are keyed by error type:
// an exact match on a concrete type anywhere in the error chain wins, then
// interface-typed handlers are tried in registration order, then the
// fallback produces a 500.
type ErrorPipeline struct {
	mu       sync.RWMutex
	exact    map[reflect.Type]ErrorHandlerFunc
	ifaces   []ifaceHandler
	fallback ErrorHandlerFunc
	logger   *slog.Logger
}

// NewErrorPipeline returns a pipeline with the default handlers installed.
func NewErrorPipeline(logger *slog.Logger) *ErrorPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &ErrorPipeline{
		exact:  make(map[reflect.Type]ErrorHandlerFunc),
		logger: logger,
	}
	p.fallback = p.internalError

	HandleError(p, func(_ *Request, err *InvalidParametersError) Response {
		pd := Problem(http.StatusBadRequest, "Invalid parameters")
		pd.Errors = err.Violations
		return Fail(http.StatusBadRequest, pd)
	})
	HandleError(p, func(_ *Request, err *UnregisteredParameterError) Response {
		p.logger.Error("unregistered parameter", slog.String("error", err.Error()))
		return ServerError(err.Error())
	})
	HandleError(p, func(_ *Request, err *ParsingError) Response {
		p.logger.Debug("body parsing failed", slog.String("error", err.Err.Error()))
		return BadRequest("Invalid body parameter")
	})
	HandleError(p, func(_ *Request, err StatusError) Response {
		var pd *ProblemDetail
		if errors.As(err, &pd) {
			return Fail(pd.Status, pd)
		}
		status := err.StatusCode()
		return Fail(status, Problem(status, err.Error()))
	})
	return p
}

// HandleError registers fn for errors of type E, replacing any previous
// handler for E. E may be a concrete type or an interface.
func HandleError[E error](p *ErrorPipeline, fn func(r *Request, err E) Response) {
	t := reflect.TypeFor[E]()

	p.mu.Lock()
	defer p.mu.Unlock()

	if t.Kind() != reflect.Interface {
		p.exact[t] = func(r *Request, err error) Response {
			return fn(r, err.(E))
		}
		return
	}

	h := ifaceHandler{
		typ: t,
		handle: func(r *Request, err error) (Response, bool) {
			var target E
			if !errors.As(err, &target) {
				return nil, false
			}
			return fn(r, target), true
		},
	}
	for i := range p.ifaces {
		if p.ifaces[i].typ == t {
			p.ifaces[i] = h
			return
		}
	}
	p.ifaces = append(p.ifaces, h)
}

// Fallback replaces the handler used when nothing else matches.
func (p *ErrorPipeline) Fallback(fn ErrorHandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = fn
}

// Handle converts err into a response.
func (p *ErrorPipeline) Handle(r *Request, err error) Response {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, link := range errorChain(err) {
		if h, ok := p.exact[reflect.TypeOf(link)]; ok {
			if resp := h(r, link); resp != nil {
				return resp
			}
		}
	}
	for _, h := range p.ifaces {
		if resp, ok := h.handle(r, err); ok && resp != nil {
			return resp
		}
	}
	if resp := p.fallback(r, err); resp != nil {
		return resp
	}
	return p.internalError(r, err)
}

func (p *ErrorPipeline) internalError(r *Request, err error) Response {
	attrs := []slog.Attr{slog.String("error", err.Error())}
	var pe *PanicError
	if errors.As(err, &pe) {
		attrs = append(attrs, slog.String("stack", pe.Stack))
	}
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
		attrs = append(attrs, slog.String("method", r.Method()), slog.String("path", r.Path()))
	}
	p.logger.LogAttrs(ctx, slog.LevelError, "unhandled error", attrs...)
	return ServerError(http.StatusText(http.StatusInternalServerError))
}

// errorChain flattens err depth-first, outermost first.
func errorChain(err error) []error {
	var out []error
	stack := []error{err}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e == nil {
			continue
		}
		out = append(out, e)
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			stack = append(stack, u.Unwrap())
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			for i := len(errs) - 1; i >= 0; i-- {
				stack = append(stack, errs[i])
			}
		}
	}
	return out
}
