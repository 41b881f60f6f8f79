package route_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Confirm  string `json:"confirm"`
}

func (s signup) Validate() error {
	if s.Password != s.Confirm {
		return route.Error(http.StatusUnprocessableEntity, "passwords do not match")
	}
	return nil
}

type slug struct {
	Value string `json:"value"`
}

func (s *slug) Validate() error {
	if strings.ContainsAny(s.Value, " /") {
		return errors.New("slug contains separators")
	}
	return nil
}

func TestHandle_body_kinds(t *testing.T) {
	t.Parallel()

	svc := newService()
	r := svc.Router()
	route.Handle(r, route.POST("raw"), func(_ *route.Request, body []byte) (route.Response, error) {
		return route.Bytes(body), nil
	})
	route.Handle(r, route.POST("text"), func(_ *route.Request, body string) (route.Response, error) {
		return route.Text(strings.ToUpper(body)), nil
	})
	route.Handle(r, route.POST("ignored"), func(_ *route.Request, _ route.NoBody) (route.Response, error) {
		return route.NoContent(), nil
	})

	tests := map[string]struct {
		target          string
		body            string
		wantStatus      int
		wantBody        string
		wantContentType string
	}{
		"bytes are passed verbatim": {
			target:          "/raw",
			body:            "not json {",
			wantStatus:      http.StatusOK,
			wantBody:        "not json {",
			wantContentType: "application/octet-stream",
		},
		"string is passed verbatim": {
			target:          "/text",
			body:            "hello",
			wantStatus:      http.StatusOK,
			wantBody:        "HELLO",
			wantContentType: "text/plain; charset=utf-8",
		},
		"no body ignores payload": {
			target:     "/ignored",
			body:       "{{{",
			wantStatus: http.StatusNoContent,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(t, svc, http.MethodPost, tc.target, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantBody, rec.Body.String())
			assert.Equal(t, tc.wantContentType, rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandle_body_validation(t *testing.T) {
	t.Parallel()

	svc := newService()
	route.Handle(svc.Router(), route.POST("signup"), func(_ *route.Request, body signup) (route.Response, error) {
		return route.Created(map[string]string{"email": body.Email}), nil
	})
	route.Handle(svc.Router(), route.POST("slugs"), func(_ *route.Request, body slug) (route.Response, error) {
		return route.Created(body.Value), nil
	})

	tests := map[string]struct {
		target     string
		body       string
		wantStatus int
		wantDetail string
		wantFields []string
	}{
		"valid body": {
			target:     "/signup",
			body:       `{"email":"a@b.co","password":"hunter22","confirm":"hunter22"}`,
			wantStatus: http.StatusCreated,
		},
		"struct tags are checked first": {
			target:     "/signup",
			body:       `{"email":"nope","password":"short"}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid parameters",
			wantFields: []string{"body.email", "body.password"},
		},
		"value receiver self validation": {
			target:     "/signup",
			body:       `{"email":"a@b.co","password":"hunter22","confirm":"hunter23"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "passwords do not match",
		},
		"pointer receiver self validation": {
			target:     "/slugs",
			body:       `{"value":"a b"}`,
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal Server Error",
		},
		"pointer receiver passes": {
			target:     "/slugs",
			body:       `{"value":"a-b"}`,
			wantStatus: http.StatusCreated,
		},
		"malformed json": {
			target:     "/signup",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Invalid body parameter",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(t, svc, http.MethodPost, tc.target, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantDetail == "" {
				return
			}
			pd := decodeProblem(t, rec)
			assert.Equal(t, tc.wantDetail, pd.Detail)
			fields := make([]string, 0, len(pd.Errors))
			for _, e := range pd.Errors {
				fields = append(fields, e.Field)
			}
			if tc.wantFields != nil {
				assert.ElementsMatch(t, tc.wantFields, fields)
			}
		})
	}
}

func TestHandle_without_body_validator(t *testing.T) {
	t.Parallel()

	svc := newService(route.WithBodyValidator(nil))
	route.Handle(svc.Router(), route.POST("orders"), func(_ *route.Request, body order) (route.Response, error) {
		return route.Created(body.Qty), nil
	})

	rec := serve(t, svc, http.MethodPost, "/orders", `{"qty":0}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandle_returns_scoped_endpoint(t *testing.T) {
	t.Parallel()

	r := route.NewRouter()
	g := r.Group("api", route.WithGroupTags("api"))
	e := route.Handle(g, route.GET("items").Tagged("items"), textHandler("ok"))

	assert.Equal(t, "/api/items", e.Pattern().String())
	assert.Equal(t, []string{"api", "items"}, e.Info().Tags)
}
