package auth

import (
	"github.com/bjaus/route"
)

// TokenHeader is the request header carrying the access token.
const TokenHeader = "X-Access-Token"

// AccessToken declares the optional access token header. Its bound value is
// the Authentication produced by m; a missing or empty header yields
// MissingToken instead of a binding failure.
func AccessToken(m *Manager) *route.Parameter[Authentication] {
	v := route.NewValidator("access token", `(?s)^.*$`, func(raw string) (Authentication, error) {
		return m.Authenticate(raw), nil
	})
	return route.OptionalHeader[Authentication](TokenHeader, v, MissingToken,
		route.EmptyAsMissing(),
		route.Describe("the access token used to authenticate the request"),
	)
}

// Principal returns the claims of an authenticated request.
func Principal(r *route.Request, token *route.Parameter[Authentication]) (Claims, bool) {
	a, err := token.Value(r)
	if err != nil {
		return Claims{}, false
	}
	if auth, ok := a.(Authenticated); ok {
		return auth.Claims, true
	}
	return Claims{}, false
}

func unauthorized(a Authentication) route.Outcome {
	reason := "unauthorized"
	if u, ok := a.(Unauthenticated); ok {
		reason = u.Reason()
	}
	return route.Failed(route.Unauthorized(reason))
}

// IsAuthenticated passes when the token verified. It fails with 401 otherwise.
func IsAuthenticated(token *route.Parameter[Authentication]) route.Condition {
	return route.NewCondition("Authenticated", func(r *route.Request) route.Outcome {
		switch a := token.Get(r).(type) {
		case Authenticated:
			return route.Pass()
		default:
			return unauthorized(a)
		}
	}, token)
}

// HasRole passes when the authenticated principal has role. Unauthenticated
// requests fail with 401, other roles with 403.
func HasRole(token *route.Parameter[Authentication], role Role) route.Condition {
	return route.NewCondition("HasRole("+string(role)+")", func(r *route.Request) route.Outcome {
		a := token.Get(r)
		auth, ok := a.(Authenticated)
		if !ok {
			return unauthorized(a)
		}
		if auth.Claims.Role != role {
			return route.Failed(route.Forbidden("requires role " + string(role)))
		}
		return route.Pass()
	}, token)
}

// PrincipalEquals passes when the authenticated user ID equals the raw value
// of param. Unauthenticated requests fail with 401, mismatches with 403.
// A path param must already be part of the endpoint pattern.
func PrincipalEquals(token *route.Parameter[Authentication], param route.Param) route.Condition {
	declared := []route.Param{token}
	if param.In() != route.InPath {
		declared = append(declared, param)
	}
	return route.NewCondition("Principal equals "+param.Name(), func(r *route.Request) route.Outcome {
		a := token.Get(r)
		auth, ok := a.(Authenticated)
		if !ok {
			return unauthorized(a)
		}
		raw, _ := r.RawValue(param)
		if auth.Claims.UserID != raw {
			return route.Failed(route.Forbidden("forbidden"))
		}
		return route.Pass()
	}, declared...)
}

// Authenticate returns a decoration that rejects unauthenticated requests
// with 401 before the handler runs. Declare token on the endpoint with it:
//
//	e.Decorated(auth.Authenticate(token), token)
func Authenticate(token *route.Parameter[Authentication]) route.Decoration {
	return func(r *route.Request, next route.Next) (route.Response, error) {
		a := token.Get(r)
		if _, ok := a.(Authenticated); !ok {
			failure, _ := unauthorized(a).Failed()
			return failure, nil
		}
		return next()
	}
}
