package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/frostline/restcurve/pkg/metrics"
)

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware records request counts and latency per endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(rec.status))
		metrics.RecordHTTPDuration(endpoint, time.Since(start).Seconds())
	}
}
