package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crm_backend/pkg/apperr"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	leadsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crm_leads_created_total",
		Help: "Total number of leads created",
	})

	activitiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_activities_created_total",
		Help: "Total number of activities created, by type",
	}, []string{"type"})
)

// Middleware instruments every request with count and latency metrics.
// The registered route pattern is used as the path label so ids do not
// explode the cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Errors are mapped to status codes by the app error handler after
		// this middleware unwinds, so derive the code here the same way.
		status := c.Response().StatusCode()
		if err != nil {
			if _, ok := apperr.KindOf(err); ok {
				status = apperr.HTTPStatus(err)
			} else if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		httpRequestsTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the Prometheus scrape endpoint as a Fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// ObserveLeadCreated records a successful lead creation.
func ObserveLeadCreated() {
	leadsCreated.Inc()
}

// ObserveActivityCreated records a successful activity creation.
func ObserveActivityCreated(activityType string) {
	activitiesCreated.WithLabelValues(activityType).Inc()
}
