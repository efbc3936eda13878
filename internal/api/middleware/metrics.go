package middleware

import (
	"net/http"
	"sync/atomic"
)

// Counters holds request totals by outcome.
type Counters struct {
	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
}

// Metrics returns middleware that counts requests into c.
func Metrics(c *Counters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Requests.Add(1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			switch {
			case rw.statusCode >= 500:
				c.ServerErrors.Add(1)
			case rw.statusCode >= 400:
				c.ClientErrors.Add(1)
			}
		})
	}
}
