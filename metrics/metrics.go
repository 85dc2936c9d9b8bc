// Package metrics exposes Prometheus counters for HTTP traffic and feeding changes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the application metrics registered on one registry.
type Collector struct {
	reg *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	feedings *prometheus.CounterVec
}

// New registers all metrics, plus Go runtime and process collectors, on a fresh registry.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedlog_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedlog_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		feedings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedlog_feeding_mutations_total",
			Help: "Feeding records added, edited or deleted.",
		}, []string{"op"}),
	}

	c.reg.MustRegister(
		c.requests,
		c.latency,
		c.feedings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Middleware records one sample per request, labelled by the matched route pattern.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !ctx.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}

			c.requests.WithLabelValues(route, ctx.Request().Method, strconv.Itoa(status)).Inc()
			c.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// FeedingChanged counts a successful add, edit or delete.
func (c *Collector) FeedingChanged(op string) {
	c.feedings.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
