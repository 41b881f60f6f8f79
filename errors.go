package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// StatusError is an error that carries its own HTTP status code.
type StatusError interface {
	error
	StatusCoder
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string            `json:"type,omitempty"`
	Title    string            `json:"title,omitempty"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// Problem returns a ProblemDetail for status with the standard title.
func Problem(status int, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// ValidationError describes a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error returns the failure message.
func (e *ValidationError) Error() string { return e.Message }

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// InvalidParametersError reports every parameter or body field that failed
// binding for a single request.
type InvalidParametersError struct {
	Violations []ValidationError
}

// Error joins all violation messages.
func (e *InvalidParametersError) Error() string {
	return strings.Join(e.Reasons(), "; ")
}

// Reasons returns the violation messages in declaration order.
func (e *InvalidParametersError) Reasons() []string {
	reasons := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		reasons = append(reasons, v.Message)
	}
	return reasons
}

// UnregisteredParameterError is raised when a handler reads a parameter that
// is not declared on the endpoint being served.
type UnregisteredParameterError struct {
	Param Param
}

func (e *UnregisteredParameterError) Error() string {
	return fmt.Sprintf("Attempting to use unregistered %s parameter `%s`", strings.ToLower(e.Param.In().String()), e.Param.Name())
}

// ParsingError wraps a request body that could not be decoded.
type ParsingError struct {
	Err error
}

func (e *ParsingError) Error() string {
	return "parse body: " + e.Err.Error()
}

func (e *ParsingError) Unwrap() error { return e.Err }

// PanicError carries a recovered panic value together with its stack. Error
// values other than runtime errors are not wrapped.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

var errNilResponse = errors.New("handler returned no response")
