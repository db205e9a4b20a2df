package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fitstack/gymtracker/internal/instrumentation"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics counts requests by method and status and observes the
// handler duration.
func RequestMetrics(instr *instrumentation.Instrumentation) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			instr.HistRequestDuration.Observe(time.Since(begin).Seconds())
			instr.CounterRequests.With(prometheus.Labels{
				"method": r.Method,
				"status": strconv.Itoa(recorder.status),
			}).Inc()
		})
	}
}

// statusRecorder remembers the status code written by the handler, which
// net/http otherwise never exposes to middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	s.ResponseWriter.WriteHeader(statusCode)
	s.status = statusCode
}
