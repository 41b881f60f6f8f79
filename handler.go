package route

// NoBody is used as a type parameter when an endpoint takes no request body,
// or as the payload of a response without a body.
type NoBody struct{}

// Handler is the core typed handler signature. The body is decoded and
// validated before the handler runs; parameters are read through the Request.
type Handler[B any] func(r *Request, body B) (Response, error)

// BeforeHook runs after binding and before conditions. Returning an error
// aborts the request and routes the error through the error pipeline.
type BeforeHook func(r *Request) error

// AfterHook observes the final response, including condition failures and
// responses produced by the error pipeline.
type AfterHook func(r *Request, resp Response)

// Next continues the pipeline from inside a Decoration.
type Next func() (Response, error)

// Decoration wraps the handler. It may run code before and after calling
// next, or skip next entirely and return its own response.
type Decoration func(r *Request, next Next) (Response, error)
