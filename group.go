package route

import (
	"slices"
)

// GroupOption configures a group.
type GroupOption func(*Router)

// WithGroupTags adds default tags to all endpoints registered on the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Router) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupDecorations wraps every endpoint registered on the group. Group
// decorations are outside the endpoint's own decorations.
func WithGroupDecorations(ds ...Decoration) GroupOption {
	return func(g *Router) {
		g.decorations = append(g.decorations, ds...)
	}
}

// Group returns a child router whose endpoints are registered under prefix.
// prefix may be anything Path accepts.
func (r *Router) Group(prefix any, opts ...GroupOption) *Router {
	g := &Router{
		table:       r.table,
		parent:      r,
		prefix:      r.prefix.Join(Path(prefix)),
		tags:        slices.Clone(r.tags),
		decorations: slices.Clone(r.decorations),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// scope applies the group prefix, tags and decorations to e.
func (r *Router) scope(e Endpoint) Endpoint {
	e = e.Prefixed(r.prefix)
	if len(r.tags) > 0 {
		e.tags = append(slices.Clone(r.tags), e.tags...)
	}
	if len(r.decorations) > 0 {
		e.decorations = append(slices.Clone(r.decorations), e.decorations...)
	}
	return e
}

// Scoped runs fn on an unprefixed group and then applies transforms to the
// endpoints fn registered, in order.
func (r *Router) Scoped(fn func(g *Router), transforms ...Transform) {
	g := r.Group("")
	fn(g)
	for _, t := range transforms {
		g.ApplyToAll(t)
	}
}
