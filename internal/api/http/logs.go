package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/types"
)

// maxUILogEntries caps one batch from the browser
const maxUILogEntries = 100

// StreamLogs handles batched logs from the wizard frontend
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req types.UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid log request format")
		return
	}

	if req.Source != "ui" {
		respondError(c, http.StatusBadRequest, "Invalid log source")
		return
	}
	if len(req.Entries) == 0 {
		respondError(c, http.StatusBadRequest, "No log entries provided")
		return
	}
	if len(req.Entries) > maxUILogEntries {
		respondError(c, http.StatusBadRequest, "Too many log entries")
		return
	}

	logger := tracing.Logger(c.Request.Context(), h.logger.Named("ui"))
	for _, entry := range req.Entries {
		logUIEntry(logger, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}

func logUIEntry(logger *zap.Logger, entry types.UILogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+4)
	fields = append(fields,
		zap.String("ui_log_id", entry.ID),
		zap.String("source", "ui"),
		zap.String("ui_timestamp", entry.Timestamp),
		zap.Int("priority", entry.Priority),
	)

	// JSON numbers decode as float64
	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		logger.Error(entry.Message, fields...)
	case "warn":
		logger.Warn(entry.Message, fields...)
	case "debug":
		logger.Debug(entry.Message, fields...)
	case "verbose":
		logger.Debug("[VERBOSE] "+entry.Message, fields...)
	default:
		logger.Info(entry.Message, fields...)
	}
}
