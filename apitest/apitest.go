// Package apitest provides typed test helpers for route services.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bjaus/route"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server  *httptest.Server
	headers http.Header
}

// NewClient creates a test client serving h, usually a *route.Service.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv, headers: http.Header{}}
}

// SetHeader sets a header sent with every request from c.
func (c *Client) SetHeader(name, value string) {
	c.headers.Set(name, value)
}

// RequestOption customizes a single request.
type RequestOption func(*http.Request)

// WithHeader sets a header on the request.
func WithHeader(name, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(name, value)
	}
}

// Response holds a decoded API response.
type Response[T any] struct {
	Status  int
	Headers http.Header
	// Body is set for non-problem responses that decode as T.
	Body *T
	// Problem is set for application/problem+json responses.
	Problem *route.ProblemDetail
	Raw     []byte
}

// Get sends a typed GET request.
func Get[Resp any](t testing.TB, c *Client, path string, opts ...RequestOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, path, nil, opts)
}

// Post sends a typed POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req, opts ...RequestOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, body, opts)
}

// Put sends a typed PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req, opts ...RequestOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPut, path, body, opts)
}

// Patch sends a typed PATCH request with a JSON body.
func Patch[Req, Resp any](t testing.TB, c *Client, path string, body *Req, opts ...RequestOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPatch, path, body, opts)
}

// Delete sends a typed DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string, opts ...RequestOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodDelete, path, nil, opts)
}

// Send sends a request with a raw body and content type.
func Send[Resp any](t testing.TB, c *Client, method, path, contentType string, body []byte, opts ...RequestOption) *Response[Resp] {
	t.Helper()
	opts = append([]RequestOption{WithHeader("Content-Type", contentType)}, opts...)
	return send[Resp](t, c, method, path, bytes.NewReader(body), opts)
}

func do[Resp any](t testing.TB, c *Client, method, path string, body any, opts []RequestOption) *Response[Resp] {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("apitest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
		opts = append([]RequestOption{WithHeader("Content-Type", "application/json")}, opts...)
	}
	return send[Resp](t, c, method, path, reqBody, opts)
}

func send[Resp any](t testing.TB, c *Client, method, path string, body io.Reader, opts []RequestOption) *Response[Resp] {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, body)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: read body: %v", err)
	}

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Raw:     raw,
	}
	if len(raw) == 0 {
		return result
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/problem+json") {
		var pd route.ProblemDetail
		if json.Unmarshal(raw, &pd) == nil {
			result.Problem = &pd
		}
		return result
	}

	var decoded Resp
	if json.Unmarshal(raw, &decoded) == nil {
		result.Body = &decoded
	}
	return result
}
