package route

import (
	"errors"
	"fmt"
	"strings"
)

// Pattern errors.
var (
	ErrNotPathParam    = errors.New("pattern: parameter is not a path parameter")
	ErrUnsupportedPart = errors.New("pattern: unsupported part")
	ErrDuplicateParam  = errors.New("pattern: duplicate path parameter")
)

type segment struct {
	literal string
	param   Param
}

// Pattern is an ordered list of path segments. Each segment is either a
// literal or a path parameter.
type Pattern struct {
	segments []segment
}

// Path builds a Pattern and panics on an invalid part. Parts may be strings
// (split on "/"), path parameters or other patterns.
func Path(parts ...any) Pattern {
	p, err := CompilePattern(parts...)
	if err != nil {
		panic(err)
	}
	return p
}

// CompilePattern builds a Pattern from parts.
func CompilePattern(parts ...any) (Pattern, error) {
	var p Pattern
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			for _, lit := range strings.Split(strings.Trim(v, "/"), "/") {
				if lit == "" {
					continue
				}
				p.segments = append(p.segments, segment{literal: lit})
			}
		case Pattern:
			p.segments = append(p.segments, v.segments...)
		case Param:
			if v.In() != InPath {
				return Pattern{}, fmt.Errorf("%w: %s parameter %q", ErrNotPathParam, strings.ToLower(v.In().String()), v.Name())
			}
			p.segments = append(p.segments, segment{param: v})
		default:
			return Pattern{}, fmt.Errorf("%w: %T", ErrUnsupportedPart, part)
		}
	}

	seen := make(map[string]struct{})
	for _, s := range p.segments {
		if s.param == nil {
			continue
		}
		if _, ok := seen[s.param.Name()]; ok {
			return Pattern{}, fmt.Errorf("%w: %q", ErrDuplicateParam, s.param.Name())
		}
		seen[s.param.Name()] = struct{}{}
	}
	return p, nil
}

// Join returns a new pattern with other appended.
func (p Pattern) Join(other Pattern) Pattern {
	return Path(p, other)
}

// Len returns the number of segments.
func (p Pattern) Len() int { return len(p.segments) }

// Params returns the path parameters in segment order.
func (p Pattern) Params() []Param {
	var out []Param
	for _, s := range p.segments {
		if s.param != nil {
			out = append(out, s.param)
		}
	}
	return out
}

// String renders the pattern, e.g. "/users/{id}/posts".
func (p Pattern) String() string {
	return p.render(func(prm Param) string { return "{" + prm.Name() + "}" })
}

// Key renders the pattern with anonymous parameters, e.g. "/users/{}/posts".
// Two patterns with the same key match the same set of paths.
func (p Pattern) Key() string {
	return p.render(func(Param) string { return "{}" })
}

func (p Pattern) render(param func(Param) string) string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.param != nil {
			b.WriteString(param(s.param))
			continue
		}
		b.WriteString(s.literal)
	}
	return b.String()
}

// Match reports whether path has the same number of segments as p, with every
// literal equal and every parameter segment non-empty. Captures are keyed by
// parameter name.
func (p Pattern) Match(path string) (map[string]string, bool) {
	return p.match(splitPath(path))
}

func (p Pattern) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(p.segments) {
		return nil, false
	}
	var captures map[string]string
	for i, s := range p.segments {
		if s.param == nil {
			if parts[i] != s.literal {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		if captures == nil {
			captures = make(map[string]string)
		}
		captures[s.param.Name()] = parts[i]
	}
	if captures == nil {
		captures = map[string]string{}
	}
	return captures, true
}

// loose returns a copy of p whose parameters accept any non-empty segment.
func (p Pattern) loose() Pattern {
	out := Pattern{segments: make([]segment, len(p.segments))}
	for i, s := range p.segments {
		if s.param != nil {
			s.param = PathParam(s.param.Name(), OfString)
		}
		out.segments[i] = s
	}
	return out
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
