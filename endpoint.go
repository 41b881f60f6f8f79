package route

import (
	"fmt"
	"net/http"
	"slices"
)

// Endpoint is an immutable route declaration. Every builder method returns
// a new Endpoint and leaves the receiver untouched.
type Endpoint struct {
	method      string
	pattern     Pattern
	params      []Param
	summary     string
	description string
	tags        []string
	conditions  []Condition
	before      []BeforeHook
	after       []AfterHook
	decorations []Decoration
	around      []Decoration
}

// NewEndpoint declares an endpoint for method on the pattern built from parts.
func NewEndpoint(method string, parts ...any) Endpoint {
	return Endpoint{method: method, pattern: Path(parts...)}
}

// GET declares a GET endpoint.
func GET(parts ...any) Endpoint { return NewEndpoint(http.MethodGet, parts...) }

// POST declares a POST endpoint.
func POST(parts ...any) Endpoint { return NewEndpoint(http.MethodPost, parts...) }

// PUT declares a PUT endpoint.
func PUT(parts ...any) Endpoint { return NewEndpoint(http.MethodPut, parts...) }

// PATCH declares a PATCH endpoint.
func PATCH(parts ...any) Endpoint { return NewEndpoint(http.MethodPatch, parts...) }

// DELETE declares a DELETE endpoint.
func DELETE(parts ...any) Endpoint { return NewEndpoint(http.MethodDelete, parts...) }

// HEAD declares a HEAD endpoint.
func HEAD(parts ...any) Endpoint { return NewEndpoint(http.MethodHead, parts...) }

// OPTIONS declares an OPTIONS endpoint.
func OPTIONS(parts ...any) Endpoint { return NewEndpoint(http.MethodOptions, parts...) }

// Method returns the HTTP method.
func (e Endpoint) Method() string { return e.method }

// Pattern returns the path pattern.
func (e Endpoint) Pattern() Pattern { return e.pattern }

// With declares additional query or header parameters. Path parameters
// belong in the pattern and are rejected.
func (e Endpoint) With(params ...Param) Endpoint {
	for _, p := range params {
		if p.In() == InPath {
			panic(fmt.Errorf("%w: %q must be part of the pattern", ErrNotPathParam, p.Name()))
		}
	}
	e.params = appendParams(slices.Clone(e.params), params...)
	return e
}

// OnlyIf attaches a condition. The condition's parameters are declared too.
func (e Endpoint) OnlyIf(c Condition) Endpoint {
	e.conditions = append(slices.Clone(e.conditions), c)
	e.params = appendParams(slices.Clone(e.params), conditionParams(c)...)
	return e
}

// DoBefore appends a before hook.
func (e Endpoint) DoBefore(h BeforeHook) Endpoint {
	e.before = append(slices.Clone(e.before), h)
	return e
}

// DoAfter appends an after hook.
func (e Endpoint) DoAfter(h AfterHook) Endpoint {
	e.after = append(slices.Clone(e.after), h)
	return e
}

// Decorated wraps the handler with d. The first decoration declared is the
// outermost. Parameters d reads are declared on the endpoint.
func (e Endpoint) Decorated(d Decoration, params ...Param) Endpoint {
	e.decorations = append(slices.Clone(e.decorations), d)
	e.params = appendParams(slices.Clone(e.params), params...)
	return e
}

// Around wraps the whole exchange with d: binding, hooks, conditions,
// decorations and handler. Every response the endpoint produces passes
// through d, binding and condition failures included. Around decorations
// run before binding, so they may only read raw request values. The first
// declared is the outermost.
func (e Endpoint) Around(d Decoration) Endpoint {
	e.around = append(slices.Clone(e.around), d)
	return e
}

// InSummary sets the one-line summary.
func (e Endpoint) InSummary(s string) Endpoint {
	e.summary = s
	return e
}

// DescribedAs sets the long description.
func (e Endpoint) DescribedAs(d string) Endpoint {
	e.description = d
	return e
}

// Tagged appends tags.
func (e Endpoint) Tagged(tags ...string) Endpoint {
	e.tags = append(slices.Clone(e.tags), tags...)
	return e
}

// Prefixed returns e with prefix prepended to its pattern.
func (e Endpoint) Prefixed(prefix Pattern) Endpoint {
	e.pattern = prefix.Join(e.pattern)
	return e
}

// Params returns every declared parameter: path parameters first, in
// pattern order, then the rest in declaration order.
func (e Endpoint) Params() []Param {
	return appendParams(e.pattern.Params(), e.params...)
}

// Conditions returns the attached conditions.
func (e Endpoint) Conditions() []Condition { return slices.Clone(e.conditions) }

func appendParams(dst []Param, params ...Param) []Param {
	for _, p := range params {
		if p == nil || slices.Contains(dst, p) {
			continue
		}
		dst = append(dst, p)
	}
	return dst
}

// EndpointInfo is the documentation view of an endpoint.
type EndpointInfo struct {
	Method      string      `json:"method" yaml:"method"`
	Path        string      `json:"path" yaml:"path"`
	Summary     string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Params      []ParamInfo `json:"params,omitempty" yaml:"params,omitempty"`
	Body        string      `json:"body,omitempty" yaml:"body,omitempty"`
	Conditions  []string    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// ParamInfo is the documentation view of a parameter.
type ParamInfo struct {
	Name        string `json:"name" yaml:"name"`
	In          string `json:"in" yaml:"in"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Expecting   string `json:"expecting" yaml:"expecting"`
	Regex       string `json:"regex,omitempty" yaml:"regex,omitempty"`
	Required    bool   `json:"required" yaml:"required"`
}

// Info returns the documentation view of e.
func (e Endpoint) Info() EndpointInfo {
	info := EndpointInfo{
		Method:      e.method,
		Path:        e.pattern.String(),
		Summary:     e.summary,
		Description: e.description,
		Tags:        slices.Clone(e.tags),
	}
	for _, p := range e.Params() {
		info.Params = append(info.Params, ParamInfo{
			Name:        p.Name(),
			In:          p.In().String(),
			Description: p.Description(),
			Expecting:   p.Expecting(),
			Regex:       p.Regex(),
			Required:    p.Required(),
		})
	}
	for _, c := range e.conditions {
		info.Conditions = append(info.Conditions, c.Description())
	}
	return info
}
