package route

import (
	"fmt"
	"net/http"
)

// Format is the wire representation of a response body.
type Format int

const (
	FormatJSON Format = iota
	FormatTextPlain
	FormatTextHTML
	FormatOctetStream
	FormatImageJPEG
	FormatVideoMP4
)

// ContentType returns the media type for f. JSON responses use the codec's
// content type instead.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatTextPlain:
		return "text/plain; charset=utf-8"
	case FormatTextHTML:
		return "text/html; charset=utf-8"
	case FormatOctetStream:
		return "application/octet-stream"
	case FormatImageJPEG:
		return "image/jpeg"
	case FormatVideoMP4:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTextPlain:
		return "text"
	case FormatTextHTML:
		return "html"
	case FormatOctetStream:
		return "octet-stream"
	case FormatImageJPEG:
		return "jpeg"
	case FormatVideoMP4:
		return "mp4"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Variant tags the three kinds of handler result.
type Variant int

const (
	VariantSuccessful Variant = iota + 1
	VariantError
	VariantRaw
)

// Response is the result of handling a request. Concrete values are
// Successful, ErrorResponse and Raw; all of them are immutable.
type Response interface {
	Variant() Variant
	StatusCode() int
	Format() Format
	// Headers returns a copy of the response headers.
	Headers() map[string]string
	// Payload returns the body value to be encoded.
	Payload() any
	// WithHeader returns a copy of the response with the header set.
	WithHeader(name, value string) Response
}

// AddHeader sets a header on any response while keeping its static type.
func AddHeader[R Response](r R, name, value string) R {
	return r.WithHeader(name, value).(R)
}

func withHeader(h map[string]string, name, value string) map[string]string {
	out := make(map[string]string, len(h)+1)
	for k, v := range h {
		out[k] = v
	}
	out[http.CanonicalHeaderKey(name)] = value
	return out
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Successful is a 2xx-style result carrying a typed body.
type Successful[T any] struct {
	status  int
	body    T
	format  Format
	headers map[string]string
}

// Success returns a Successful response with an explicit status.
func Success[T any](status int, body T) Successful[T] {
	return Successful[T]{status: status, body: body}
}

// OK returns a 200 response.
func OK[T any](body T) Successful[T] { return Success(http.StatusOK, body) }

// Created returns a 201 response.
func Created[T any](body T) Successful[T] { return Success(http.StatusCreated, body) }

// Accepted returns a 202 response.
func Accepted[T any](body T) Successful[T] { return Success(http.StatusAccepted, body) }

// NoContent returns a 204 response without a body.
func NoContent() Successful[NoBody] { return Success(http.StatusNoContent, NoBody{}) }

// Text returns a 200 text/plain response.
func Text(body string) Successful[string] { return OK(body).As(FormatTextPlain) }

// HTML returns a 200 text/html response.
func HTML(body string) Successful[string] { return OK(body).As(FormatTextHTML) }

// Bytes returns a 200 application/octet-stream response.
func Bytes(body []byte) Successful[[]byte] { return OK(body).As(FormatOctetStream) }

// As returns a copy of s rendered in format f.
func (s Successful[T]) As(f Format) Successful[T] {
	s.format = f
	return s
}

// Header returns a copy of s with the header set.
func (s Successful[T]) Header(name, value string) Successful[T] {
	s.headers = withHeader(s.headers, name, value)
	return s
}

// Body returns the typed body.
func (s Successful[T]) Body() T { return s.body }

func (s Successful[T]) Variant() Variant           { return VariantSuccessful }
func (s Successful[T]) StatusCode() int            { return s.status }
func (s Successful[T]) Format() Format             { return s.format }
func (s Successful[T]) Headers() map[string]string { return copyHeaders(s.headers) }
func (s Successful[T]) Payload() any               { return s.body }

func (s Successful[T]) WithHeader(name, value string) Response {
	return s.Header(name, value)
}

// ErrorResponse is a 4xx/5xx-style result carrying typed details.
type ErrorResponse[E any] struct {
	status  int
	details E
	format  Format
	headers map[string]string
}

// Fail returns an ErrorResponse with the given status.
func Fail[E any](status int, details E) ErrorResponse[E] {
	return ErrorResponse[E]{status: status, details: details}
}

// BadRequest returns a 400 problem response.
func BadRequest(detail string) ErrorResponse[*ProblemDetail] {
	return Fail(http.StatusBadRequest, Problem(http.StatusBadRequest, detail))
}

// Unauthorized returns a 401 problem response.
func Unauthorized(detail string) ErrorResponse[*ProblemDetail] {
	return Fail(http.StatusUnauthorized, Problem(http.StatusUnauthorized, detail))
}

// Forbidden returns a 403 problem response.
func Forbidden(detail string) ErrorResponse[*ProblemDetail] {
	return Fail(http.StatusForbidden, Problem(http.StatusForbidden, detail))
}

// NotFound returns a 404 problem response.
func NotFound(detail string) ErrorResponse[*ProblemDetail] {
	return Fail(http.StatusNotFound, Problem(http.StatusNotFound, detail))
}

// Conflict returns a 409 problem response.
func Conflict(detail string) ErrorResponse[*ProblemDetail] {
	return Fail(http.StatusConflict, Problem(http.StatusConflict, detail))
}

// ServerError returns a 500 problem response.
func ServerError(detail string) ErrorResponse[*ProblemDetail] {
	return Fail(http.StatusInternalServerError, Problem(http.StatusInternalServerError, detail))
}

// As returns a copy of e rendered in format f.
func (e ErrorResponse[E]) As(f Format) ErrorResponse[E] {
	e.format = f
	return e
}

// Header returns a copy of e with the header set.
func (e ErrorResponse[E]) Header(name, value string) ErrorResponse[E] {
	e.headers = withHeader(e.headers, name, value)
	return e
}

// Details returns the typed error details.
func (e ErrorResponse[E]) Details() E { return e.details }

func (e ErrorResponse[E]) Variant() Variant           { return VariantError }
func (e ErrorResponse[E]) StatusCode() int            { return e.status }
func (e ErrorResponse[E]) Format() Format             { return e.format }
func (e ErrorResponse[E]) Headers() map[string]string { return copyHeaders(e.headers) }
func (e ErrorResponse[E]) Payload() any               { return e.details }

func (e ErrorResponse[E]) WithHeader(name, value string) Response {
	return e.Header(name, value)
}

// Raw is a pre-encoded body written as-is.
type Raw struct {
	status  int
	body    []byte
	format  Format
	headers map[string]string
}

// RawResponse returns a Raw response.
func RawResponse(status int, body []byte, f Format) Raw {
	return Raw{status: status, body: body, format: f}
}

// Header returns a copy of r with the header set.
func (r Raw) Header(name, value string) Raw {
	r.headers = withHeader(r.headers, name, value)
	return r
}

// Body returns the encoded body.
func (r Raw) Body() []byte { return r.body }

func (r Raw) Variant() Variant           { return VariantRaw }
func (r Raw) StatusCode() int            { return r.status }
func (r Raw) Format() Format             { return r.format }
func (r Raw) Headers() map[string]string { return copyHeaders(r.headers) }
func (r Raw) Payload() any               { return r.body }

func (r Raw) WithHeader(name, value string) Response {
	return r.Header(name, value)
}
