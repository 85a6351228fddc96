package middleware

import (
	"net/http"
	"sync/atomic"
)

// Counters are the request totals shown on /metrics.
type Counters struct {
	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
	// MatchesRated counts matches accepted by POST /v1/matches.
	MatchesRated atomic.Int64
}

// Errors is the total of 4xx and 5xx responses.
func (c *Counters) Errors() int64 {
	return c.ClientErrors.Load() + c.ServerErrors.Load()
}

type MetricsCollector struct {
	counters *Counters
}

func NewMetricsCollector(c *Counters) *MetricsCollector {
	return &MetricsCollector{counters: c}
}

func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.counters.Requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		switch {
		case rw.statusCode >= 500:
			mc.counters.ServerErrors.Add(1)
		case rw.statusCode >= 400:
			mc.counters.ClientErrors.Add(1)
		case rw.statusCode == http.StatusCreated && r.Method == http.MethodPost && r.URL.Path == "/v1/matches":
			mc.counters.MatchesRated.Add(1)
		}
	})
}
