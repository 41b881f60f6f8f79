package route_test

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	svc := newService()
	r := svc.Router()
	route.Handle(r, route.GET("users", userID), textHandler("user"))
	route.Handle(r, route.GET("private").OnlyIf(queryFlag("key")), textHandler("private"))
	route.NewMetrics(reg, "test").Install(r)
	route.Handle(r, route.GET("unmetered"), textHandler("free"))

	serve(t, svc, http.MethodGet, "/users/1", "")
	serve(t, svc, http.MethodGet, "/users/2", "")
	serve(t, svc, http.MethodGet, "/users/abc", "")
	serve(t, svc, http.MethodGet, "/private", "")
	serve(t, svc, http.MethodGet, "/unmetered", "")

	tests := map[string]struct {
		labels map[string]string
		want   float64
	}{
		"successes by pattern": {
			labels: map[string]string{"method": "GET", "pattern": "/users/{id}", "status": "200"},
			want:   2,
		},
		"binding failures": {
			labels: map[string]string{"method": "GET", "pattern": "/users/{id}", "status": "400"},
			want:   1,
		},
		"condition failures": {
			labels: map[string]string{"method": "GET", "pattern": "/private", "status": "403"},
			want:   1,
		},
		"endpoints added later": {
			labels: map[string]string{"pattern": "/unmetered"},
			want:   0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, counterValue(t, reg, "test_http_requests_total", tc.labels), 0)
		})
	}

	count, err := testutil.GatherAndCount(reg, "test_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram series per pattern")
}
