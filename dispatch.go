package route

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// Dispatcher runs the per-request pipeline: match, bind, before hooks,
// conditions, decorations and handler, error conversion, after hooks.
type Dispatcher struct {
	router    *Router
	errors    *ErrorPipeline
	codec     Codec
	validator BodyValidator
	logger    *slog.Logger
}

// NewDispatcher returns a Dispatcher over router. A nil codec selects a
// fresh JSONCodec; a nil pipeline selects the defaults.
func NewDispatcher(router *Router, errs *ErrorPipeline, codec Codec, v BodyValidator, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if errs == nil {
		errs = NewErrorPipeline(logger)
	}
	if codec == nil {
		codec = NewJSONCodec()
	}
	return &Dispatcher{
		router:    router,
		errors:    errs,
		codec:     codec,
		validator: v,
		logger:    logger,
	}
}

// Dispatch serves a single exchange. It never returns nil and never panics
// for handler failures. The first call freezes the router.
//
// Around decorations wrap everything past matching, so every response of a
// matched endpoint passes through them and then through the after hooks.
func (d *Dispatcher) Dispatch(ex Exchange) Response {
	d.router.freeze()

	ent, captures, ok := d.router.match(ex.Method(), ex.Path())
	if !ok {
		return notFound(ex)
	}
	r := newRequest(ex, ent, captures)
	e := ent.endpoint

	resp, err := guard(chain(r, e.around, func() (Response, error) {
		return d.serve(r, ent), nil
	}))
	if err == nil && resp == nil {
		err = errNilResponse
	}
	if err != nil {
		resp = d.fail(r, err)
	}
	for _, h := range e.after {
		d.after(h, r, resp)
	}
	return resp
}

// serve binds the request and runs the endpoint, converting any failure
// through the error pipeline.
func (d *Dispatcher) serve(r *Request, ent *entry) Response {
	body, err := d.prepare(r, ent)
	if err != nil {
		return d.fail(r, err)
	}
	resp, err := guard(func() (Response, error) {
		return d.run(r, ent, body)
	})
	if err != nil {
		return d.fail(r, err)
	}
	return resp
}

// prepare binds parameters and decodes the body.
func (d *Dispatcher) prepare(r *Request, ent *entry) (any, error) {
	return guardValue(func() (any, error) {
		if err := r.bind(); err != nil {
			return nil, err
		}
		return ent.decode(r, d.codec, d.validator)
	})
}

func (d *Dispatcher) run(r *Request, ent *entry, body any) (Response, error) {
	e := ent.endpoint
	for _, h := range e.before {
		if err := h(r); err != nil {
			return nil, err
		}
	}
	for _, c := range e.conditions {
		if resp, failed := c.Check(r).Failed(); failed {
			return resp, nil
		}
	}

	// Decorations see handler failures as the pipeline's response.
	handler := func() (Response, error) {
		resp, err := guard(func() (Response, error) {
			return ent.call(r, body)
		})
		if err == nil && resp == nil {
			err = errNilResponse
		}
		if err != nil {
			return d.fail(r, err), nil
		}
		return resp, nil
	}
	resp, err := chain(r, e.decorations, handler)()
	if err == nil && resp == nil {
		return nil, errNilResponse
	}
	return resp, err
}

// fail records err on r and converts it.
func (d *Dispatcher) fail(r *Request, err error) Response {
	r.err = err
	return d.errors.Handle(r, err)
}

// after runs h and logs a panic instead of propagating it, since the
// response is already final.
func (d *Dispatcher) after(h AfterHook, r *Request, resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.LogAttrs(r.Context(), slog.LevelError, "after hook panicked",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	h(r, resp)
}

// chain composes decorations around handler. The first decoration is the
// outermost.
func chain(r *Request, ds []Decoration, handler Next) Next {
	next := handler
	for i := len(ds) - 1; i >= 0; i-- {
		d, inner := ds[i], next
		next = func() (Response, error) {
			return d(r, inner)
		}
	}
	return next
}

// guard runs fn and converts a panic into an error. Error panic values are
// passed through so the pipeline can match on them; runtime errors keep
// their stack.
func guard(fn func() (Response, error)) (resp Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp, err = nil, recovered(rec)
		}
	}()
	return fn()
}

func guardValue(fn func() (any, error)) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, recovered(rec)
		}
	}()
	return fn()
}

func recovered(rec any) error {
	if err, ok := rec.(error); ok {
		if _, isRuntime := err.(runtime.Error); !isRuntime {
			return err
		}
	}
	return &PanicError{Value: rec, Stack: string(debug.Stack())}
}

func notFound(ex Exchange) Response {
	return NotFound(fmt.Sprintf("no endpoint for %s %s", ex.Method(), ex.Path()))
}
