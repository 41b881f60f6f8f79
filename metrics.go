package route

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records request counts and latencies per endpoint pattern. It is
// installed as a before/after hook pair. After hooks see the final status of
// every matched request, binding failures included; latency is observed only
// once before hooks have run.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	now      func() time.Time
}

// NewMetrics registers the request metrics with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, pattern and status.",
		}, []string{"method", "pattern", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "pattern"}),
		now: time.Now,
	}
}

// Install attaches the metric hooks to every endpoint currently registered
// through r.
func (m *Metrics) Install(r *Router) {
	r.DoBefore(m.Before)
	r.DoAfter(m.After)
}

// Before records the request start time.
func (m *Metrics) Before(r *Request) error {
	SetValue(r, metricsStart(m.now()))
	return nil
}

// After observes the final response.
func (m *Metrics) After(r *Request, resp Response) {
	status := "0"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode())
	}
	m.requests.WithLabelValues(r.Method(), r.Pattern(), status).Inc()
	if start, ok := GetValue[metricsStart](r.Context()); ok {
		m.duration.WithLabelValues(r.Method(), r.Pattern()).Observe(m.now().Sub(time.Time(start)).Seconds())
	}
}

type metricsStart time.Time
