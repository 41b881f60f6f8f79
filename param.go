package route

import (
	"fmt"
	"regexp"
)

// Location identifies the request facet a parameter is read from.
type Location int

const (
	InPath Location = iota + 1
	InQuery
	InHeader
)

// String returns the human-readable facet name used in binding messages.
func (l Location) String() string {
	switch l {
	case InPath:
		return "Path"
	case InQuery:
		return "Query"
	case InHeader:
		return "Header"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// Validator describes the accepted shape of a raw parameter value and how to
// turn it into R.
type Validator[R any] struct {
	Description string
	Regex       *regexp.Regexp
	Parse       func(raw string) (R, error)
}

// NewValidator compiles pattern and returns a Validator. It panics if the
// pattern does not compile, since validators are declared at start-up.
func NewValidator[R any](description, pattern string, parse func(raw string) (R, error)) Validator[R] {
	return Validator[R]{
		Description: description,
		Regex:       regexp.MustCompile(pattern),
		Parse:       parse,
	}
}

func (v Validator[R]) matches(raw string) bool {
	return v.Regex == nil || v.Regex.MatchString(raw)
}

// Param is the untyped view of a declared parameter. It is what endpoints,
// routers and documentation tooling work with.
type Param interface {
	Name() string
	In() Location
	Description() string
	Required() bool
	EmptyAsMissing() bool
	InvalidAsMissing() bool
	// Expecting returns the validator description, e.g. "non negative integer".
	Expecting() string
	// Regex returns the validator's regular expression source.
	Regex() string
	// DefaultValue returns the value substituted when an optional parameter is missing.
	DefaultValue() any

	bind(raw string, present bool) (any, error)
}

// Parameter is a named, typed request input. Parameters are created once at
// declaration time and never change afterwards.
type Parameter[R any] struct {
	name      string
	in        Location
	validator Validator[R]
	required  bool
	def       R

	description      string
	emptyAsMissing   bool
	invalidAsMissing bool
}

type paramSpec struct {
	description      string
	emptyAsMissing   bool
	invalidAsMissing bool
}

// ParamOption configures a parameter at declaration.
type ParamOption func(*paramSpec)

// Describe sets the parameter description shown in route metadata.
func Describe(text string) ParamOption {
	return func(s *paramSpec) {
		s.description = text
	}
}

// EmptyAsMissing treats an empty raw value as if the parameter was absent.
func EmptyAsMissing() ParamOption {
	return func(s *paramSpec) {
		s.emptyAsMissing = true
	}
}

// InvalidAsMissing treats a value that fails validation as if the parameter
// was absent instead of rejecting the request.
func InvalidAsMissing() ParamOption {
	return func(s *paramSpec) {
		s.invalidAsMissing = true
	}
}

func newParameter[R any](name string, in Location, v Validator[R], required bool, def R, opts []ParamOption) *Parameter[R] {
	var s paramSpec
	for _, opt := range opts {
		opt(&s)
	}
	return &Parameter[R]{
		name:             name,
		in:               in,
		validator:        v,
		required:         required,
		def:              def,
		description:      s.description,
		emptyAsMissing:   s.emptyAsMissing,
		invalidAsMissing: s.invalidAsMissing,
	}
}

// PathParam declares a path segment parameter. Path parameters are always required.
func PathParam[R any](name string, v Validator[R], opts ...ParamOption) *Parameter[R] {
	var zero R
	return newParameter(name, InPath, v, true, zero, opts)
}

// Query declares a required query string parameter.
func Query[R any](name string, v Validator[R], opts ...ParamOption) *Parameter[R] {
	var zero R
	return newParameter(name, InQuery, v, true, zero, opts)
}

// OptionalQuery declares a query string parameter that falls back to def when missing.
func OptionalQuery[R any](name string, v Validator[R], def R, opts ...ParamOption) *Parameter[R] {
	return newParameter(name, InQuery, v, false, def, opts)
}

// Header declares a required header parameter.
func Header[R any](name string, v Validator[R], opts ...ParamOption) *Parameter[R] {
	var zero R
	return newParameter(name, InHeader, v, true, zero, opts)
}

// OptionalHeader declares a header parameter that falls back to def when missing.
func OptionalHeader[R any](name string, v Validator[R], def R, opts ...ParamOption) *Parameter[R] {
	return newParameter(name, InHeader, v, false, def, opts)
}

func (p *Parameter[R]) Name() string           { return p.name }
func (p *Parameter[R]) In() Location           { return p.in }
func (p *Parameter[R]) Description() string    { return p.description }
func (p *Parameter[R]) Required() bool         { return p.required }
func (p *Parameter[R]) EmptyAsMissing() bool   { return p.emptyAsMissing }
func (p *Parameter[R]) InvalidAsMissing() bool { return p.invalidAsMissing }
func (p *Parameter[R]) Expecting() string      { return p.validator.Description }
func (p *Parameter[R]) DefaultValue() any      { return p.def }

func (p *Parameter[R]) Regex() string {
	if p.validator.Regex == nil {
		return ""
	}
	return p.validator.Regex.String()
}

// Value returns the bound value of p for the request. It fails with
// *UnregisteredParameterError when p is not declared on the matched endpoint.
func (p *Parameter[R]) Value(r *Request) (R, error) {
	v, err := r.value(p)
	if err != nil {
		var zero R
		return zero, err
	}
	return v.(R), nil
}

// Get is like Value but panics on error. The dispatcher recovers the panic and
// hands the error to the error pipeline, so handlers can use Get freely.
func (p *Parameter[R]) Get(r *Request) R {
	v, err := p.Value(r)
	if err != nil {
		panic(err)
	}
	return v
}

// bind applies the missing/invalid policy. Emptiness is checked before
// pattern validity.
func (p *Parameter[R]) bind(raw string, present bool) (any, error) {
	if present && raw == "" && p.emptyAsMissing {
		present = false
	}

	if present && !p.validator.matches(raw) {
		if !p.invalidAsMissing {
			return nil, p.invalid(raw)
		}
		present = false
	}

	if !present {
		if p.required {
			return nil, p.missing()
		}
		return p.def, nil
	}

	v, err := p.validator.Parse(raw)
	if err != nil {
		if !p.invalidAsMissing {
			return nil, p.invalid(raw)
		}
		if p.required {
			return nil, p.missing()
		}
		return p.def, nil
	}
	return v, nil
}

func (p *Parameter[R]) missing() error {
	return &ValidationError{
		Field:   p.name,
		Message: fmt.Sprintf("Required %s parameter `%s` is missing", p.in, p.name),
	}
}

func (p *Parameter[R]) invalid(raw string) error {
	return &ValidationError{
		Field:   p.name,
		Message: fmt.Sprintf("%s parameter `%s` is invalid, expecting %s, got `%s`", p.in, p.name, p.validator.Description, raw),
		Value:   raw,
	}
}
