package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the HTTP layer. A nil *Metrics records
// nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	syncItems *prometheus.CounterVec
	handler   http.Handler
}

// NewMetrics registers the HTTP collectors, plus the Go runtime and process
// collectors, on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spendy_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code",
		}, []string{"method", "endpoint", "status"}),

		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spendy_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "endpoint"}),

		syncItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spendy_sync_items_total",
			Help: "Entries processed by batch operations, labeled by outcome",
		}, []string{"operation", "outcome"}),

		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
}

func (m *Metrics) observeRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) observeSync(operation, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.syncItems.WithLabelValues(operation, outcome).Add(float64(n))
}
