package httpclient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jongio/httpio/urlutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpio_request_duration_seconds",
			Help:    "Duration of single request attempts in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"host", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpio_requests_total",
			Help: "Total number of request attempts by response code",
		},
		[]string{"host", "code"},
	)

	retryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpio_retries_total",
			Help: "Total number of retried request attempts",
		},
		[]string{"host"},
	)

	urlRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpio_url_rejections_total",
			Help: "Request URLs rejected before any I/O, by reason",
		},
		[]string{"reason"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "httpio_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"addr"},
	)
)

// recordAttempt records one completed or failed attempt. code is 0 on
// transport errors.
func recordAttempt(host string, code int, elapsed time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	labels := prometheus.Labels{"host": host, "code": label}
	requestDuration.With(labels).Observe(elapsed.Seconds())
	requestTotal.With(labels).Inc()
}

func recordRetry(host string) {
	retryTotal.With(prometheus.Labels{"host": host}).Inc()
}

// rejectionReason maps a gate error to a metric label.
func rejectionReason(err error) string {
	var uerr *urlutil.URLError
	if errors.As(err, &uerr) {
		return uerr.Kind.String()
	}
	return "policy"
}

func recordRejection(err error) {
	urlRejections.With(prometheus.Labels{"reason": rejectionReason(err)}).Inc()
}

func recordBreakerState(addr string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateClosed:
		value = 0
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	breakerState.With(prometheus.Labels{"addr": addr}).Set(value)
}

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer creates an HTTP server exposing /metrics and /health on addr.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
