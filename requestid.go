package route

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDConfig configures the RequestID decoration.
type RequestIDConfig struct {
	Header    string        // default: "X-Request-ID"
	Generator func() string // default: random UUID
}

// RequestID returns a decoration that assigns a unique request ID to each
// request. The ID is read from the request header (if present) or generated.
// It is stored in the context and set on the response header. Install it
// with Around so failures carry the header too.
func RequestID(cfg ...RequestIDConfig) Decoration {
	c := RequestIDConfig{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}
	if len(cfg) > 0 {
		if cfg[0].Header != "" {
			c.Header = cfg[0].Header
		}
		if cfg[0].Generator != nil {
			c.Generator = cfg[0].Generator
		}
	}

	return func(r *Request, next Next) (Response, error) {
		id, _ := r.HeaderValue(c.Header)
		if id == "" {
			id = c.Generator()
		}
		r.ctx = context.WithValue(r.ctx, requestIDKey{}, id)

		resp, err := next()
		if err != nil {
			return nil, err
		}
		return resp.WithHeader(c.Header, id), nil
	}
}

// GetRequestID extracts the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
