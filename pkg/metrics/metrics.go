// Package metrics provides Prometheus metrics for the gateway.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docgate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	contentBytesStreamed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docgate_content_bytes_streamed_total",
			Help: "Total bytes served from the view endpoint",
		},
	)

	listingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgate_listings_total",
			Help: "Total root/directory listings served",
		},
		[]string{"outcome"},
	)

	accessRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docgate_access_requests_total",
			Help: "Total consent prompts issued",
		},
	)
)

// RecordContentBytes adds served content bytes to the streaming counter.
func RecordContentBytes(n int64) {
	if n > 0 {
		contentBytesStreamed.Add(float64(n))
	}
}

// RecordListing counts a listing by outcome ("ok", "empty", "degraded").
func RecordListing(outcome string) {
	listingsTotal.WithLabelValues(outcome).Inc()
}

// RecordAccessRequest counts an issued consent prompt.
func RecordAccessRequest() {
	accessRequestsTotal.Inc()
}

// statusRecorder wraps http.ResponseWriter to capture the response status.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments an HTTP handler with request count and duration
// metrics. The gateway serves a fixed set of paths, so labeling by path
// keeps cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpRequestsTotal.WithLabelValues(
			r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(
			r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// ListenAndServe runs the metrics/health sidecar listener until the context
// is cancelled.
func ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
