package route

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Exchange is the inbound side of the transport boundary. Any server can
// drive a Dispatcher by implementing it.
type Exchange interface {
	Context() context.Context
	Method() string
	// Path returns the request path without query string.
	Path() string
	QueryParam(name string) (string, bool)
	HeaderValue(name string) (string, bool)
	RawBody() ([]byte, error)
}

// ResponseSink is the outbound side of the transport boundary. Headers are
// written first, then the status, then the body exactly once.
type ResponseSink interface {
	WriteHeader(name, value string)
	WriteStatus(code int)
	WriteBody(body []byte, contentType string) error
}

type remoteAddresser interface {
	RemoteAddr() string
}

// httpExchange adapts *http.Request to Exchange.
type httpExchange struct {
	req  *http.Request
	path string

	body    []byte
	bodyErr error
	read    bool
}

// NewExchange adapts an *http.Request. path overrides the URL path, which is
// how the Service strips its base path.
func NewExchange(req *http.Request, path string) Exchange {
	return &httpExchange{req: req, path: path}
}

func (e *httpExchange) Context() context.Context { return e.req.Context() }
func (e *httpExchange) Method() string           { return e.req.Method }
func (e *httpExchange) Path() string             { return e.path }
func (e *httpExchange) RemoteAddr() string       { return e.req.RemoteAddr }

// QueryParam returns the query value. Repeated values are joined with commas.
func (e *httpExchange) QueryParam(name string) (string, bool) {
	values, ok := e.req.URL.Query()[name]
	if !ok {
		return "", false
	}
	return strings.Join(values, ","), true
}

// HeaderValue returns the header value. Repeated values are joined with commas.
func (e *httpExchange) HeaderValue(name string) (string, bool) {
	values := e.req.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ","), true
}

func (e *httpExchange) RawBody() ([]byte, error) {
	if e.read {
		return e.body, e.bodyErr
	}
	e.read = true
	if e.req.Body == nil {
		return nil, nil
	}
	e.body, e.bodyErr = io.ReadAll(e.req.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(e.bodyErr, &tooLarge) {
		e.bodyErr = Errorf(http.StatusRequestEntityTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return e.body, e.bodyErr
}

// httpSink adapts http.ResponseWriter to ResponseSink.
type httpSink struct {
	w      http.ResponseWriter
	status int
}

// NewSink adapts an http.ResponseWriter.
func NewSink(w http.ResponseWriter) ResponseSink {
	return &httpSink{w: w, status: http.StatusOK}
}

func (s *httpSink) WriteHeader(name, value string) { s.w.Header().Set(name, value) }
func (s *httpSink) WriteStatus(code int)           { s.status = code }

func (s *httpSink) WriteBody(body []byte, contentType string) error {
	if contentType != "" {
		s.w.Header().Set("Content-Type", contentType)
	}
	s.w.WriteHeader(s.status)
	if len(body) == 0 {
		return nil
	}
	_, err := s.w.Write(body)
	return err
}

const problemContentType = "application/problem+json"

// ErrEncodeResponse is returned by Render when the body could not be
// encoded. Nothing has been written to the sink in that case.
var ErrEncodeResponse = errors.New("encode response")

// Render encodes resp and writes it to sink.
func Render(sink ResponseSink, resp Response, codec Codec) error {
	body, contentType, err := encodeBody(resp, codec)
	if err != nil {
		return err
	}
	for k, v := range resp.Headers() {
		sink.WriteHeader(k, v)
	}
	sink.WriteStatus(resp.StatusCode())
	return sink.WriteBody(body, contentType)
}

func encodeBody(resp Response, codec Codec) ([]byte, string, error) {
	status := resp.StatusCode()
	if status == http.StatusNoContent || status == http.StatusNotModified {
		return nil, "", nil
	}

	switch resp.Variant() {
	case VariantRaw:
		b, err := asBytes(resp.Payload())
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrEncodeResponse, err)
		}
		return b, resp.Format().ContentType(), nil
	case VariantSuccessful, VariantError:
		payload := resp.Payload()
		if _, ok := payload.(NoBody); ok {
			return nil, "", nil
		}
		if resp.Format() != FormatJSON {
			b, err := asBytes(payload)
			if err != nil {
				return nil, "", fmt.Errorf("%w: %w", ErrEncodeResponse, err)
			}
			return b, resp.Format().ContentType(), nil
		}
		var buf bytes.Buffer
		if err := codec.Encode(&buf, payload); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrEncodeResponse, err)
		}
		contentType := codec.ContentType()
		if _, ok := payload.(*ProblemDetail); ok {
			contentType = problemContentType
		}
		return buf.Bytes(), contentType, nil
	default:
		return nil, "", fmt.Errorf("%w: unknown variant %d", ErrEncodeResponse, resp.Variant())
	}
}

func asBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case fmt.Stringer:
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("%T cannot be written as raw bytes", v)
	}
}
