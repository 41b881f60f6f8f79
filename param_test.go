package route_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
)

func TestParameter_missing_policies(t *testing.T) {
	t.Parallel()

	var (
		requiredEmpty     = route.Query("v", route.OfString, route.EmptyAsMissing())
		requiredInvalid   = route.Query("v", route.OfPositiveInt, route.InvalidAsMissing())
		requiredBoth      = route.Query("v", route.OfPositiveInt, route.EmptyAsMissing(), route.InvalidAsMissing())
		optionalBoth      = route.OptionalQuery("v", route.OfString, "fallback", route.EmptyAsMissing(), route.InvalidAsMissing())
		optionalInvalid   = route.OptionalQuery("v", route.OfString, "fallback", route.InvalidAsMissing())
		optionalIntBoth   = route.OptionalQuery("v", route.OfPositiveInt, 5, route.EmptyAsMissing(), route.InvalidAsMissing())
		requiredHeaderAll = route.Header("X-V", route.OfPositiveInt, route.EmptyAsMissing(), route.InvalidAsMissing())
	)

	tests := map[string]struct {
		param      route.Param
		get        func(*route.Request) any
		target     string
		header     []string
		wantStatus int
		wantBody   string
		wantReason string
	}{
		"required empty as missing fails": {
			param:      requiredEmpty,
			get:        func(r *route.Request) any { return requiredEmpty.Get(r) },
			target:     "/p?v=",
			wantStatus: http.StatusBadRequest,
			wantReason: "Required Query parameter `v` is missing",
		},
		"required empty as missing accepts a value": {
			param:      requiredEmpty,
			get:        func(r *route.Request) any { return requiredEmpty.Get(r) },
			target:     "/p?v=x",
			wantStatus: http.StatusOK,
			wantBody:   "x",
		},
		"required invalid as missing reports missing": {
			param:      requiredInvalid,
			get:        func(r *route.Request) any { return requiredInvalid.Get(r) },
			target:     "/p?v=abc",
			wantStatus: http.StatusBadRequest,
			wantReason: "Required Query parameter `v` is missing",
		},
		"required with both policies on empty": {
			param:      requiredBoth,
			get:        func(r *route.Request) any { return requiredBoth.Get(r) },
			target:     "/p?v=",
			wantStatus: http.StatusBadRequest,
			wantReason: "Required Query parameter `v` is missing",
		},
		"required with both policies on invalid": {
			param:      requiredBoth,
			get:        func(r *route.Request) any { return requiredBoth.Get(r) },
			target:     "/p?v=-1",
			wantStatus: http.StatusBadRequest,
			wantReason: "Required Query parameter `v` is missing",
		},
		"emptiness is checked before validity": {
			param:      optionalBoth,
			get:        func(r *route.Request) any { return optionalBoth.Get(r) },
			target:     "/p?v=",
			wantStatus: http.StatusOK,
			wantBody:   "fallback",
		},
		"valid empty value is kept without empty as missing": {
			param:      optionalInvalid,
			get:        func(r *route.Request) any { return optionalInvalid.Get(r) },
			target:     "/p?v=",
			wantStatus: http.StatusOK,
			wantBody:   "",
		},
		"optional with both policies on invalid": {
			param:      optionalIntBoth,
			get:        func(r *route.Request) any { return optionalIntBoth.Get(r) },
			target:     "/p?v=zero",
			wantStatus: http.StatusOK,
			wantBody:   "5",
		},
		"optional with both policies on valid": {
			param:      optionalIntBoth,
			get:        func(r *route.Request) any { return optionalIntBoth.Get(r) },
			target:     "/p?v=8",
			wantStatus: http.StatusOK,
			wantBody:   "8",
		},
		"required header with both policies": {
			param:      requiredHeaderAll,
			get:        func(r *route.Request) any { return requiredHeaderAll.Get(r) },
			target:     "/p",
			header:     []string{"X-V", "nope"},
			wantStatus: http.StatusBadRequest,
			wantReason: "Required Header parameter `X-V` is missing",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			svc := newService()
			route.Handle(svc.Router(), route.GET("p").With(tc.param), func(r *route.Request, _ route.NoBody) (route.Response, error) {
				return route.Text(fmt.Sprint(tc.get(r))), nil
			})

			rec := serve(t, svc, http.MethodGet, tc.target, "", tc.header...)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, tc.wantBody, rec.Body.String())
				return
			}
			pd := decodeProblem(t, rec)
			require.Len(t, pd.Errors, 1)
			assert.Equal(t, tc.wantReason, pd.Errors[0].Message)
		})
	}
}
