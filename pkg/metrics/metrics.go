package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "autopo"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Observe records one finished request.
func (m *ServerMetrics) Observe(handler string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

// ReorderMetrics tracks reorder runs.
type ReorderMetrics struct {
	Runs            *prometheus.CounterVec
	Orders          *prometheus.CounterVec
	Units           *prometheus.CounterVec
	Escalations     *prometheus.CounterVec
	PublishFailures prometheus.Counter
	RunDuration     prometheus.Histogram
}

func NewReorderMetrics(reg prometheus.Registerer) *ReorderMetrics {
	m := &ReorderMetrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reorder",
			Name:      "runs_total",
			Help:      "Reorder runs by outcome and mode.",
		}, []string{"status", "dry_run"}),
		Orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reorder",
			Name:      "orders_total",
			Help:      "Orders emitted per warehouse.",
		}, []string{"warehouse"}),
		Units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reorder",
			Name:      "order_units_total",
			Help:      "Units ordered per warehouse.",
		}, []string{"warehouse"}),
		Escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reorder",
			Name:      "escalations_total",
			Help:      "Desired on-hand escalations after stock-outs per warehouse.",
		}, []string{"warehouse"}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reorder",
			Name:      "publish_failures_total",
			Help:      "Runs whose orders could not be published.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reorder",
			Name:      "run_duration_seconds",
			Help:      "Wall time of reorder runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.Runs, m.Orders, m.Units, m.Escalations, m.PublishFailures, m.RunDuration)
	return m
}

// Handler serves the metrics collected by gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
