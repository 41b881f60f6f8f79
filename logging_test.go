package route_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
)

func TestLogged(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		handler   route.Handler[route.NoBody]
		wantLevel string
		wantMsg   string
		wantAttrs map[string]any
	}{
		"success is logged at info": {
			handler:   func(*route.Request, route.NoBody) (route.Response, error) { return route.Created("ok"), nil },
			wantLevel: "INFO",
			wantMsg:   "request",
			wantAttrs: map[string]any{"status": float64(http.StatusCreated)},
		},
		"server error response is logged at error": {
			handler:   func(*route.Request, route.NoBody) (route.Response, error) { return route.ServerError("down"), nil },
			wantLevel: "ERROR",
			wantMsg:   "request",
			wantAttrs: map[string]any{"status": float64(http.StatusInternalServerError)},
		},
		"converted client error is logged at warn": {
			handler:   func(*route.Request, route.NoBody) (route.Response, error) { return nil, route.Error(http.StatusConflict, "taken") },
			wantLevel: "WARN",
			wantMsg:   "request failed",
			wantAttrs: map[string]any{"error": "taken", "status": float64(http.StatusConflict)},
		},
		"converted server error is logged at error": {
			handler:   func(*route.Request, route.NoBody) (route.Response, error) { return nil, errors.New("db timeout") },
			wantLevel: "ERROR",
			wantMsg:   "request failed",
			wantAttrs: map[string]any{"error": "db timeout", "status": float64(http.StatusInternalServerError)},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			svc := newService()
			route.Handle(svc.Router(), route.GET("users", userID).Decorated(route.Logged(logger)), tc.handler)
			serve(t, svc, http.MethodGet, "/users/9", "")

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tc.wantLevel, line["level"])
			assert.Equal(t, tc.wantMsg, line["msg"])
			assert.Equal(t, "GET", line["method"])
			assert.Equal(t, "/users/9", line["path"])
			assert.Equal(t, "/users/{id}", line["pattern"])
			assert.Equal(t, "192.0.2.1:1234", line["remote"])
			assert.Contains(t, line, "latency")
			for k, v := range tc.wantAttrs {
				assert.Equal(t, v, line[k], k)
			}
		})
	}
}

func TestLogged_around_binding_failure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	svc := newService()
	route.Handle(svc.Router(), route.GET("users", userID).Around(route.Logged(logger)), textHandler("ok"))
	rec := serve(t, svc, http.MethodGet, "/users/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "request failed", line["msg"])
	assert.InDelta(t, float64(http.StatusBadRequest), line["status"], 0)
	assert.Equal(t, "Path parameter `id` is invalid, expecting non negative integer, got `abc`", line["error"])
}

func TestLogged_with_request_id(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	svc := newService()
	route.Handle(svc.Router(), route.GET("x").
		Decorated(route.RequestID()).
		Decorated(route.Logged(logger)), textHandler("ok"))

	serve(t, svc, http.MethodGet, "/x", "", "X-Request-ID", "req-42")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
}
