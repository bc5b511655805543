// Package metrics holds the Prometheus collectors of the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial_failure"
	OutcomeInvalid = "invalid"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Checkouts       *prometheus.CounterVec
	StockRejections *prometheus.CounterVec
	ReviewsAdded    prometheus.Counter
}

// New registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		}, []string{"method", "path"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petsupplies_checkouts_total",
			Help: "Checkout attempts by outcome",
		}, []string{"outcome"}),
		StockRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petsupplies_stock_rejections_total",
			Help: "Stock decrements refused for lack of stock",
		}, []string{"product_id"}),
		ReviewsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petsupplies_reviews_total",
			Help: "Reviews accepted",
		}),
	}
	reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration, m.Checkouts, m.StockRejections, m.ReviewsAdded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
