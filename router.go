package route

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Registration errors.
var (
	ErrDuplicateEndpoint = errors.New("route: duplicate endpoint")
	ErrFrozen            = errors.New("route: router is frozen")
)

// entry is a registered endpoint together with its typed invocation.
type entry struct {
	endpoint Endpoint
	params   []Param
	declared map[Param]struct{}

	bodyType reflect.Type
	decode   func(r *Request, codec Codec, v BodyValidator) (any, error)
	call     func(r *Request, body any) (Response, error)
}

func (e *entry) set(ep Endpoint) {
	e.endpoint = ep
	e.params = ep.Params()
	e.declared = make(map[Param]struct{}, len(e.params))
	for _, p := range e.params {
		e.declared[p] = struct{}{}
	}
}

func (e *entry) key() string {
	return e.endpoint.method + " " + e.endpoint.pattern.Key()
}

func (e *entry) info() EndpointInfo {
	info := e.endpoint.Info()
	if e.bodyType != nil && e.bodyType != reflect.TypeFor[NoBody]() {
		info.Body = e.bodyType.String()
	}
	return info
}

// table is the registry shared by a router and all of its groups.
type table struct {
	mu       sync.Mutex
	frozen   atomic.Bool
	entries  []*entry
	byMethod map[string][]*entry
	keys     map[string]*entry
}

func (t *table) reindex() {
	t.byMethod = make(map[string][]*entry)
	t.keys = make(map[string]*entry, len(t.entries))
	for _, e := range t.entries {
		k := e.key()
		if _, ok := t.keys[k]; ok {
			panic(fmt.Errorf("%w: %s", ErrDuplicateEndpoint, k))
		}
		t.keys[k] = e
		t.byMethod[e.endpoint.method] = append(t.byMethod[e.endpoint.method], e)
	}
}

// Router is an ordered registry of endpoints. A Router created by Group
// registers into the same registry under its prefix; bulk transforms on a
// group affect only the endpoints registered through it.
type Router struct {
	table  *table
	parent *Router

	prefix      Pattern
	tags        []string
	decorations []Decoration

	entries []*entry
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{
		table: &table{
			byMethod: make(map[string][]*entry),
			keys:     make(map[string]*entry),
		},
	}
}

// add registers ent under e without applying the group scope.
func (r *Router) add(e Endpoint, ent *entry) {
	t := r.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen.Load() {
		panic(fmt.Errorf("%w: cannot register %s %s", ErrFrozen, e.method, e.pattern))
	}

	ent.set(e)
	k := ent.key()
	if prev, ok := t.keys[k]; ok {
		panic(fmt.Errorf("%w: %s %s conflicts with %s", ErrDuplicateEndpoint, e.method, e.pattern, prev.endpoint.pattern))
	}

	t.entries = append(t.entries, ent)
	t.byMethod[e.method] = append(t.byMethod[e.method], ent)
	t.keys[k] = ent
	for g := r; g != nil; g = g.parent {
		g.entries = append(g.entries, ent)
	}
}

// Transform rewrites an endpoint.
type Transform func(Endpoint) Endpoint

// ApplyToAll rewrites every endpoint registered so far through this router.
// Endpoints registered later are not affected.
func (r *Router) ApplyToAll(fn Transform) {
	t := r.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen.Load() {
		panic(fmt.Errorf("%w: cannot transform endpoints", ErrFrozen))
	}
	for _, ent := range r.entries {
		ent.set(fn(ent.endpoint))
	}
	t.reindex()
}

// Decorate wraps every current endpoint with d.
func (r *Router) Decorate(d Decoration, params ...Param) {
	r.ApplyToAll(func(e Endpoint) Endpoint { return e.Decorated(d, params...) })
}

// Around wraps the whole exchange of every current endpoint with d.
func (r *Router) Around(d Decoration) {
	r.ApplyToAll(func(e Endpoint) Endpoint { return e.Around(d) })
}

// DoBefore appends h to every current endpoint.
func (r *Router) DoBefore(h BeforeHook) {
	r.ApplyToAll(func(e Endpoint) Endpoint { return e.DoBefore(h) })
}

// DoAfter appends h to every current endpoint.
func (r *Router) DoAfter(h AfterHook) {
	r.ApplyToAll(func(e Endpoint) Endpoint { return e.DoAfter(h) })
}

// OnlyIf attaches c to every current endpoint.
func (r *Router) OnlyIf(c Condition) {
	r.ApplyToAll(func(e Endpoint) Endpoint { return e.OnlyIf(c) })
}

// With declares params on every current endpoint.
func (r *Router) With(params ...Param) {
	r.ApplyToAll(func(e Endpoint) Endpoint { return e.With(params...) })
}

// Endpoints returns documentation for the endpoints registered through this
// router, in registration order.
func (r *Router) Endpoints() []EndpointInfo {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	out := make([]EndpointInfo, 0, len(r.entries))
	for _, ent := range r.entries {
		out = append(out, ent.info())
	}
	return out
}

// Lookup returns the endpoint that would serve method and path.
func (r *Router) Lookup(method, path string) (EndpointInfo, bool) {
	ent, _, ok := r.match(method, path)
	if !ok {
		return EndpointInfo{}, false
	}
	return ent.info(), true
}

// match finds the first endpoint registered for method whose pattern
// matches path.
func (r *Router) match(method, path string) (*entry, map[string]string, bool) {
	parts := splitPath(path)
	if !r.table.frozen.Load() {
		r.table.mu.Lock()
		defer r.table.mu.Unlock()
	}
	for _, ent := range r.table.byMethod[method] {
		if captures, ok := ent.endpoint.pattern.match(parts); ok {
			return ent, captures, true
		}
	}
	return nil, nil, false
}

// freeze makes the registry read-only. It is called when serving starts.
func (r *Router) freeze() {
	if r.table.frozen.Load() {
		return
	}
	r.table.mu.Lock()
	r.table.frozen.Store(true)
	r.table.mu.Unlock()
}
