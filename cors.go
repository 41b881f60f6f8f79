package route

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures CORS handling.
type CORSConfig struct {
	AllowOrigins     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// CORS enables Cross-Origin Resource Sharing for every endpoint currently
// registered through r. It is installed with Around, so every response gets
// CORS headers listing the methods declared for its path, failures included.
// One OPTIONS endpoint is registered per path that does not already declare
// one. Call it after registering endpoints. If no config is provided,
// permissive defaults are used.
func CORS(r *Router, cfg ...CORSConfig) {
	c := CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	type path struct {
		pattern Pattern
		methods []string
	}
	var order []string
	paths := make(map[string]*path)

	r.table.mu.Lock()
	for _, ent := range r.entries {
		k := ent.endpoint.pattern.Key()
		p, ok := paths[k]
		if !ok {
			p = &path{pattern: ent.endpoint.pattern}
			paths[k] = p
			order = append(order, k)
		}
		if !slices.Contains(p.methods, ent.endpoint.method) {
			p.methods = append(p.methods, ent.endpoint.method)
		}
	}
	r.table.mu.Unlock()

	allowed := make(map[string]string, len(paths))
	for k, p := range paths {
		methods := p.methods
		if !slices.Contains(methods, http.MethodOptions) {
			methods = append(slices.Clone(methods), http.MethodOptions)
		}
		allowed[k] = strings.Join(methods, ", ")
	}

	decorate := func(req *Request, resp Response) Response {
		return corsHeaders(c, req, resp, allowed[req.entry.endpoint.pattern.Key()])
	}

	r.Around(func(req *Request, next Next) (Response, error) {
		resp, err := next()
		if err != nil {
			return nil, err
		}
		return decorate(req, resp), nil
	})

	for _, k := range order {
		p := paths[k]
		if slices.Contains(p.methods, http.MethodOptions) {
			continue
		}
		preflight := OPTIONS(p.pattern.loose()).InSummary("CORS preflight")
		r.add(preflight, newEntry(func(req *Request, _ NoBody) (Response, error) {
			return decorate(req, NoContent()), nil
		}))
	}
}

func corsHeaders(c CORSConfig, r *Request, resp Response, methods string) Response {
	origin, _ := r.HeaderValue("Origin")
	allowOrigin := ""
	switch {
	case slices.Contains(c.AllowOrigins, "*"):
		allowOrigin = "*"
		if c.AllowCredentials && origin != "" {
			allowOrigin = origin
		}
	case origin != "" && slices.Contains(c.AllowOrigins, origin):
		allowOrigin = origin
	}
	if allowOrigin == "" {
		return resp.WithHeader("Vary", "Origin")
	}

	resp = resp.WithHeader("Access-Control-Allow-Origin", allowOrigin).
		WithHeader("Access-Control-Allow-Methods", methods).
		WithHeader("Vary", "Origin")
	if len(c.AllowHeaders) > 0 {
		resp = resp.WithHeader("Access-Control-Allow-Headers", strings.Join(c.AllowHeaders, ", "))
	}
	if len(c.ExposeHeaders) > 0 {
		resp = resp.WithHeader("Access-Control-Expose-Headers", strings.Join(c.ExposeHeaders, ", "))
	}
	if c.AllowCredentials {
		resp = resp.WithHeader("Access-Control-Allow-Credentials", "true")
	}
	if c.MaxAge > 0 {
		resp = resp.WithHeader("Access-Control-Max-Age", strconv.Itoa(c.MaxAge))
	}
	return resp
}
