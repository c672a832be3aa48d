package app

import (
	"net/http"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "pricehistory"
	metricsSubsystem = "history_service"
)

var methodError = []string{"method", "error"}

// serviceMetrics holds the collectors exported on /metrics.
//
// Each app instance owns its registry, so building the app twice (tests)
// never trips over duplicate registration in the default registry.
type serviceMetrics struct {
	registry    *prometheus.Registry
	reqCount    *kitprometheus.Counter
	reqDuration *kitprometheus.Histogram
}

func newServiceMetrics() *serviceMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	count := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_count",
		Help:      "Number of history requests received.",
	}, methodError)
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_duration_seconds",
		Help:      "Time spent serving history requests, upstream fetch included.",
		Buckets:   prometheus.DefBuckets,
	}, methodError)
	reg.MustRegister(count, duration)

	return &serviceMetrics{
		registry:    reg,
		reqCount:    kitprometheus.NewCounter(count),
		reqDuration: kitprometheus.NewHistogram(duration),
	}
}

// handler exposes the registry in the Prometheus text format.
func (m *serviceMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
