package route

import (
	"context"
)

// Request is the per-request view handed to hooks, conditions, decorations
// and handlers. It is owned by a single in-flight request.
type Request struct {
	ctx      context.Context
	ex       Exchange
	entry    *entry
	captures map[string]string
	values   map[Param]any
	err      error
}

func newRequest(ex Exchange, ent *entry, captures map[string]string) *Request {
	return &Request{
		ctx:      ex.Context(),
		ex:       ex,
		entry:    ent,
		captures: captures,
		values:   make(map[Param]any, len(ent.params)),
	}
}

// Context returns the request context.
func (r *Request) Context() context.Context { return r.ctx }

// Err returns the last error the error pipeline converted for this request,
// or nil.
func (r *Request) Err() error { return r.err }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.ex.Method() }

// Path returns the request path relative to the service base path.
func (r *Request) Path() string { return r.ex.Path() }

// Pattern returns the matched endpoint pattern, e.g. "/users/{id}".
func (r *Request) Pattern() string { return r.entry.endpoint.pattern.String() }

// Endpoint returns metadata for the matched endpoint.
func (r *Request) Endpoint() EndpointInfo { return r.entry.info() }

// PathValue returns the raw captured path segment for name.
func (r *Request) PathValue(name string) string { return r.captures[name] }

// QueryValue returns the raw query value for name.
func (r *Request) QueryValue(name string) (string, bool) { return r.ex.QueryParam(name) }

// HeaderValue returns the raw header value for name.
func (r *Request) HeaderValue(name string) (string, bool) { return r.ex.HeaderValue(name) }

// RawBody returns the unparsed request body.
func (r *Request) RawBody() ([]byte, error) { return r.ex.RawBody() }

// RemoteAddr returns the client address when the transport exposes one.
func (r *Request) RemoteAddr() string {
	if ra, ok := r.ex.(remoteAddresser); ok {
		return ra.RemoteAddr()
	}
	return ""
}

// RawValue returns the raw string for p from the facet p is declared in.
func (r *Request) RawValue(p Param) (string, bool) {
	switch p.In() {
	case InPath:
		v, ok := r.captures[p.Name()]
		return v, ok
	case InQuery:
		return r.ex.QueryParam(p.Name())
	case InHeader:
		return r.ex.HeaderValue(p.Name())
	default:
		return "", false
	}
}

// bind parses every declared parameter and collects all violations.
func (r *Request) bind() error {
	var violations []ValidationError
	for _, p := range r.entry.params {
		raw, present := r.RawValue(p)
		v, err := p.bind(raw, present)
		if err != nil {
			violations = append(violations, *asValidationError(p, err))
			continue
		}
		r.values[p] = v
	}
	if len(violations) > 0 {
		return &InvalidParametersError{Violations: violations}
	}
	return nil
}

func (r *Request) value(p Param) (any, error) {
	if _, ok := r.entry.declared[p]; !ok {
		return nil, &UnregisteredParameterError{Param: p}
	}
	v, ok := r.values[p]
	if !ok {
		return nil, &UnregisteredParameterError{Param: p}
	}
	return v, nil
}

func asValidationError(p Param, err error) *ValidationError {
	if ve, ok := err.(*ValidationError); ok {
		return ve
	}
	return &ValidationError{Field: p.Name(), Message: err.Error()}
}
