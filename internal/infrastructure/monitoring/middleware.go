package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Result labels
const (
	ResultOK          = "ok"
	ResultRejected    = "rejected"
	ResultUpstream    = "upstream_error"
	ResultError       = "error"
	ResultMisconfig   = "misconfigured"
	ResultDuplicate   = "duplicate"
	ResultUnavailable = "unavailable"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// Get request size
		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		// Process request
		c.Next()

		// Route template keeps session ids out of label values
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, duration, reqSize, respSize)
	}
}

// Timer measures a relay call
type Timer struct {
	start     time.Time
	metrics   *Metrics
	operation string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		metrics:   metrics,
		operation: operation,
	}
}

// Stop stops the timer and records the analysis outcome
func (t *Timer) Stop(result string) {
	t.metrics.RecordAnalysis(t.operation, result, time.Since(t.start))
}
