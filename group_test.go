package route_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
)

func TestGroup_prefix(t *testing.T) {
	t.Parallel()

	svc := newService()
	v1 := svc.Router().Group("/v1")
	users := v1.Group(route.Path("users", userID))
	route.Handle(users, route.GET("posts"), func(r *route.Request, _ route.NoBody) (route.Response, error) {
		return route.Text(r.Pattern()), nil
	})
	ep := route.Handle(v1, route.GET("health"), textHandler("ok"))

	assert.Equal(t, "/v1/health", ep.Pattern().String())

	rec := serve(t, svc, http.MethodGet, "/v1/users/3/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/v1/users/{id}/posts", rec.Body.String())

	rec = serve(t, svc, http.MethodGet, "/v1/users/x/posts", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "prefix path params are bound")

	rec = serve(t, svc, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroup_tags_and_decorations(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	r := route.NewRouter()
	admin := r.Group("admin",
		route.WithGroupTags("admin"),
		route.WithGroupDecorations(tr.decoration("G")),
	)
	nested := admin.Group("reports", route.WithGroupTags("reports"))
	route.Handle(nested, route.GET().Tagged("own").Decorated(tr.decoration("E")), func(*route.Request, route.NoBody) (route.Response, error) {
		tr.add("handler")
		return route.Text("ok"), nil
	})

	info, found := r.Lookup(http.MethodGet, "/admin/reports")
	require.True(t, found)
	assert.Equal(t, []string{"admin", "reports", "own"}, info.Tags)

	d := route.NewDispatcher(r, nil, nil, nil, discard)
	resp := d.Dispatch(&memExchange{method: http.MethodGet, path: "/admin/reports"})
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, []string{"G-before", "E-before", "handler", "E-after", "G-after"}, tr.get())
}

func TestGroup_bulk_transforms_are_scoped(t *testing.T) {
	t.Parallel()

	svc := newService()
	r := svc.Router()
	route.Handle(r, route.GET("public"), textHandler("public"))

	private := r.Group("private")
	route.Handle(private, route.GET("a"), textHandler("a"))
	route.Handle(private, route.GET("b"), textHandler("b"))
	private.OnlyIf(queryFlag("key"))

	assert.Len(t, private.Endpoints(), 2)
	assert.Len(t, r.Endpoints(), 3)

	tests := map[string]struct {
		target     string
		wantStatus int
	}{
		"outside group is untouched": {target: "/public", wantStatus: http.StatusOK},
		"group endpoint is guarded":  {target: "/private/a", wantStatus: http.StatusForbidden},
		"guard can pass":             {target: "/private/b?key=true", wantStatus: http.StatusOK},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(t, svc, http.MethodGet, tc.target, "")
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRouter_Scoped(t *testing.T) {
	t.Parallel()

	svc := newService()
	r := svc.Router()
	route.Handle(r, route.GET("before"), textHandler("before"))

	r.Scoped(func(g *route.Router) {
		route.Handle(g, route.GET("inside"), textHandler("inside"))
	}, func(e route.Endpoint) route.Endpoint {
		return e.Tagged("scoped").Decorated(func(_ *route.Request, next route.Next) (route.Response, error) {
			resp, err := next()
			if err != nil {
				return nil, err
			}
			return resp.WithHeader("X-Scoped", "1"), nil
		})
	})

	route.Handle(r, route.GET("after"), textHandler("after"))

	rec := serve(t, svc, http.MethodGet, "/inside", "")
	assert.Equal(t, "1", rec.Header().Get("X-Scoped"))

	for _, path := range []string{"/before", "/after"} {
		rec = serve(t, svc, http.MethodGet, path, "")
		assert.Empty(t, rec.Header().Get("X-Scoped"), path)
	}

	all := r.Endpoints()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"scoped"}, all[1].Tags)
}
