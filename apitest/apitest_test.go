package apitest_test

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
	"github.com/bjaus/route/apitest"
)

type item struct {
	Name string `json:"name" validate:"required"`
}

func newClient(t *testing.T) *apitest.Client {
	t.Helper()

	svc := route.New(route.WithLogger(slog.New(slog.DiscardHandler)))
	r := svc.Router()
	id := route.PathParam("id", route.OfPositiveInt)
	route.Handle(r, route.GET("items", id), func(req *route.Request, _ route.NoBody) (route.Response, error) {
		if id.Get(req) > 10 {
			return route.NotFound("no such item"), nil
		}
		return route.OK(item{Name: "widget"}), nil
	})
	route.Handle(r, route.POST("items"), func(_ *route.Request, body item) (route.Response, error) {
		return route.Created(body), nil
	})
	route.Handle(r, route.PUT("items", id), func(_ *route.Request, body item) (route.Response, error) {
		return route.OK(body), nil
	})
	route.Handle(r, route.PATCH("items", id), func(_ *route.Request, body item) (route.Response, error) {
		return route.OK(body), nil
	})
	route.Handle(r, route.DELETE("items", id), func(*route.Request, route.NoBody) (route.Response, error) {
		return route.NoContent(), nil
	})
	route.Handle(r, route.POST("echo"), func(req *route.Request, body string) (route.Response, error) {
		who, _ := req.HeaderValue("X-Who")
		return route.OK(map[string]string{"body": body, "who": who}), nil
	})
	return apitest.NewClient(t, svc)
}

func TestClient(t *testing.T) {
	t.Parallel()

	c := newClient(t)

	got := apitest.Get[item](t, c, "/items/1")
	require.Equal(t, http.StatusOK, got.Status)
	require.NotNil(t, got.Body)
	assert.Equal(t, "widget", got.Body.Name)
	assert.Nil(t, got.Problem)

	missing := apitest.Get[item](t, c, "/items/11")
	require.Equal(t, http.StatusNotFound, missing.Status)
	require.NotNil(t, missing.Problem)
	assert.Equal(t, "no such item", missing.Problem.Detail)
	assert.Nil(t, missing.Body)

	created := apitest.Post[item, item](t, c, "/items", &item{Name: "gadget"})
	require.Equal(t, http.StatusCreated, created.Status)
	assert.Equal(t, "gadget", created.Body.Name)

	invalid := apitest.Post[item, item](t, c, "/items", &item{})
	require.Equal(t, http.StatusBadRequest, invalid.Status)
	require.NotNil(t, invalid.Problem)
	require.Len(t, invalid.Problem.Errors, 1)
	assert.Equal(t, "body.name", invalid.Problem.Errors[0].Field)

	put := apitest.Put[item, item](t, c, "/items/2", &item{Name: "p"})
	assert.Equal(t, "p", put.Body.Name)

	patch := apitest.Patch[item, item](t, c, "/items/2", &item{Name: "q"})
	assert.Equal(t, "q", patch.Body.Name)

	deleted := apitest.Delete[struct{}](t, c, "/items/2")
	assert.Equal(t, http.StatusNoContent, deleted.Status)
	assert.Empty(t, deleted.Raw)
	assert.Nil(t, deleted.Body)
}

func TestClient_headers(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	c.SetHeader("X-Who", "client")

	resp := apitest.Send[map[string]string](t, c, http.MethodPost, "/echo", "text/plain", []byte("hi"))
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, map[string]string{"body": "hi", "who": "client"}, *resp.Body)

	resp = apitest.Send[map[string]string](t, c, http.MethodPost, "/echo", "text/plain", []byte("hi"),
		apitest.WithHeader("X-Who", "request"))
	assert.Equal(t, "request", (*resp.Body)["who"])
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))
}
