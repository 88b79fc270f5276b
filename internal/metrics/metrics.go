package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const divisor = 100

// Metrics holds the Prometheus collectors for the widget service.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LookupsTotal        *prometheus.CounterVec
	LookupDuration      *prometheus.HistogramVec
	StageDuration       *prometheus.HistogramVec
	WidgetInstances     prometheus.Gauge
	StaleLookupsDropped prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests received",
			},
			[]string{"method", "route", "status_class"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Weather lookups by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lookup_duration_seconds",
				Help:      "End-to-end weather lookup latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lookup_stage_duration_seconds",
				Help:      "Latency of the resolve and fetch stages",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "stage"},
		),
		WidgetInstances: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "widget_instances",
				Help:      "Widget instances currently registered",
			},
		),
		StaleLookupsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_lookups_dropped_total",
				Help:      "Lookups whose result was discarded because a newer one started",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LookupsTotal,
		m.LookupDuration,
		m.StageDuration,
		m.WidgetInstances,
		m.StaleLookupsDropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveLookup(provider, outcome string, d time.Duration) {
	m.LookupsTotal.WithLabelValues(provider, outcome).Inc()
	m.LookupDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) ObserveStage(provider, stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(provider, stage).Observe(d.Seconds())
}

func (m *Metrics) SetInstances(n int) {
	m.WidgetInstances.Set(float64(n))
}

func (m *Metrics) StaleLookupDropped() {
	m.StaleLookupsDropped.Inc()
}

// HTTPMiddleware instruments every fiber route.
func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, statusClass(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func statusClass(code int) string {
	return fmt.Sprintf("%sxx", strconv.Itoa(code/divisor))
}
