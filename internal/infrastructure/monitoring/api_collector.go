package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APICollector exposes REST-side metrics.
type APICollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewAPICollector registers API metrics on reg. Pass
// prometheus.DefaultRegisterer in production.
func NewAPICollector(reg prometheus.Registerer) *APICollector {
	factory := promauto.With(reg)

	return &APICollector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatwire_api_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatwire_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
}

// Middleware records one observation per request.
func (c *APICollector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.requestsTotal.WithLabelValues(
			ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status()),
		).Inc()
		c.requestDuration.WithLabelValues(ctx.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
