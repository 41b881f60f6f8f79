package route

import (
	"bytes"
	"reflect"
)

// Handle registers h for e on r and returns the endpoint as registered, with
// the group prefix applied. It panics if an endpoint with the same method
// and path structure already exists, or if serving has started.
func Handle[B any](r *Router, e Endpoint, h Handler[B]) Endpoint {
	e = r.scope(e)
	r.add(e, newEntry(h))
	return e
}

func newEntry[B any](h Handler[B]) *entry {
	return &entry{
		bodyType: reflect.TypeFor[B](),
		decode:   decodeBody[B],
		call: func(req *Request, body any) (Response, error) {
			return h(req, body.(B))
		},
	}
}

// decodeBody reads the request body into B. NoBody skips the body, []byte
// and string receive it verbatim, anything else goes through the codec and
// then the body validators.
func decodeBody[B any](r *Request, codec Codec, v BodyValidator) (any, error) {
	var body B
	switch dst := any(&body).(type) {
	case *NoBody:
		return body, nil
	case *[]byte:
		raw, err := r.RawBody()
		if err != nil {
			return nil, err
		}
		*dst = raw
		return body, nil
	case *string:
		raw, err := r.RawBody()
		if err != nil {
			return nil, err
		}
		*dst = string(raw)
		return body, nil
	}

	raw, err := r.RawBody()
	if err != nil {
		return nil, err
	}
	if err := codec.Decode(bytes.NewReader(raw), &body); err != nil {
		return nil, &ParsingError{Err: err}
	}

	if v != nil {
		if err := v.Validate(body); err != nil {
			return nil, err
		}
	}
	if sv, ok := any(body).(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return nil, err
		}
	} else if sv, ok := any(&body).(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return nil, err
		}
	}
	return body, nil
}
