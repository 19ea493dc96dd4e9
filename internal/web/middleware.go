// ABOUTME: gin middleware for request ids, access logging, recovery, and metrics.
// ABOUTME: Access lines and panics go to the injected charm logger.
package web

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harperreed/habits/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestIDHeader carries the per-request id in and out.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func recovery(logger *log.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic serving request",
			"path", c.Request.URL.Path,
			"panic", recovered,
			"request_id", c.GetString(requestIDKey),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	})
}

var httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

var httpMetricsOnce sync.Once

func initHTTPMetrics() {
	m := telemetry.Meter("github.com/harperreed/habits/web")
	httpMetrics.requests, _ = m.Int64Counter("habits.http.requests",
		metric.WithDescription("HTTP requests served"),
	)
	httpMetrics.duration, _ = m.Float64Histogram("habits.http.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

func requestMetrics() gin.HandlerFunc {
	httpMetricsOnce.Do(initHTTPMetrics)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if httpMetrics.requests == nil || httpMetrics.duration == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
		)
		httpMetrics.requests.Add(c.Request.Context(), 1, attrs)
		httpMetrics.duration.Record(c.Request.Context(), float64(time.Since(start).Milliseconds()), attrs)
	}
}
