package route_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route"
)

func TestRateLimit(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		rate           float64
		burst          int
		numReqs        int
		wantOK         int
		wantLimited    int
		wantRetryAfter string
	}{
		"requests within burst succeed": {
			rate:        100,
			burst:       10,
			numReqs:     5,
			wantOK:      5,
			wantLimited: 0,
		},
		"requests exceeding burst get 429": {
			rate:           1,
			burst:          1,
			numReqs:        5,
			wantOK:         1,
			wantLimited:    4,
			wantRetryAfter: "1",
		},
		"slow rate rounds retry up": {
			rate:           0.25,
			burst:          2,
			numReqs:        3,
			wantOK:         2,
			wantLimited:    1,
			wantRetryAfter: "4",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			svc := newService()
			route.Handle(svc.Router(), route.GET("x").Decorated(route.RateLimit(route.RateLimitConfig{
				Rate:  tc.rate,
				Burst: tc.burst,
				Now:   func() time.Time { return now },
			})), textHandler("ok"))

			okCount := 0
			limitedCount := 0
			for range tc.numReqs {
				rec := serve(t, svc, http.MethodGet, "/x", "")
				switch rec.Code {
				case http.StatusOK:
					okCount++
				case http.StatusTooManyRequests:
					limitedCount++
					assert.Equal(t, tc.wantRetryAfter, rec.Header().Get("Retry-After"))
					assert.Equal(t, "rate limit exceeded", decodeProblem(t, rec).Detail)
				}
			}

			assert.Equal(t, tc.wantOK, okCount, "expected OK responses")
			assert.Equal(t, tc.wantLimited, limitedCount, "expected rate-limited responses")
		})
	}
}

func TestRateLimit_custom_key_func(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newService()
	route.Handle(svc.Router(), route.GET("x").Decorated(route.RateLimit(route.RateLimitConfig{
		Rate:  1,
		Burst: 1,
		Now:   func() time.Time { return now },
		KeyFunc: func(r *route.Request) string {
			key, _ := r.HeaderValue("X-API-Key")
			return key
		},
	})), textHandler("ok"))

	rec := serve(t, svc, http.MethodGet, "/x", "", "X-API-Key", "a")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, svc, http.MethodGet, "/x", "", "X-API-Key", "a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	rec = serve(t, svc, http.MethodGet, "/x", "", "X-API-Key", "b")
	assert.Equal(t, http.StatusOK, rec.Code, "keys are limited independently")
}

func TestRateLimit_refills_over_time(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := newService()
	route.Handle(svc.Router(), route.GET("x").Decorated(route.RateLimit(route.RateLimitConfig{
		Rate:            1,
		Burst:           1,
		Now:             clock,
		CleanupInterval: time.Hour,
		MaxIdle:         time.Hour,
	})), textHandler("ok"))

	require.Equal(t, http.StatusOK, serve(t, svc, http.MethodGet, "/x", "").Code)
	require.Equal(t, http.StatusTooManyRequests, serve(t, svc, http.MethodGet, "/x", "").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serve(t, svc, http.MethodGet, "/x", "").Code)
}

func TestRateLimit_custom_on_limit(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newService()
	route.Handle(svc.Router(), route.GET("x").Decorated(route.RateLimit(route.RateLimitConfig{
		Rate:  1,
		Burst: 1,
		Now:   func() time.Time { return now },
		OnLimit: func(*route.Request) route.Response {
			return route.Text("slow down")
		},
	})), textHandler("ok"))

	serve(t, svc, http.MethodGet, "/x", "")
	rec := serve(t, svc, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "slow down", rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
