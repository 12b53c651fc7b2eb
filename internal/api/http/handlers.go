package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/analyze"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/assessment"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/upload"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/types"
)

// SessionHeader carries the caller's assessment session for duplicate detection
const SessionHeader = "X-Assessment-Session"

// Version is reported by GET /
const Version = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	catalog  *catalog.Catalog
	sessions *assessment.Manager
	uploads  *upload.Relay
	analyses *analyze.Relay
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	cat *catalog.Catalog,
	sessions *assessment.Manager,
	uploads *upload.Relay,
	analyses *analyze.Relay,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		catalog:  cat,
		sessions: sessions,
		uploads:  uploads,
		analyses: analyses,
		metrics:  metrics,
		logger:   logger,
	}
}

// Root handles service info
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, types.ServiceInfo{
		Status:  "online",
		Service: "DWPNxt Intake Service (Go)",
		Version: Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	h.metrics.SetSessionsActive(h.sessions.Count())
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"categories": h.catalog.Len(),
		"sessions":   h.sessions.Count(),
		"metrics":    h.metrics.Snapshot(),
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, types.ErrorResponse{Error: message})
}

// uploaderKey identifies the caller for in-flight duplicate detection. The
// relays pair it with the file content or source URL, so callers sharing an
// address only collide when they send the same bytes at the same time.
func uploaderKey(c *gin.Context) string {
	if s := c.GetHeader(SessionHeader); s != "" {
		return s
	}
	return c.ClientIP()
}
