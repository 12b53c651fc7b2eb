package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/analyze"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/upload"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/types"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/utils"
)

// Upload stores a ticket export and returns its public location
func (h *Handlers) Upload(c *gin.Context) {
	maxBytes := h.uploads.MaxBytes()

	header, err := c.FormFile("file")
	if err != nil {
		uploadErr := upload.ErrNoFile
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			uploadErr = upload.ErrFileTooLarge
		}
		h.metrics.RecordUpload(monitoring.ResultRejected, 0)
		respondError(c, http.StatusBadRequest, upload.Message(uploadErr, maxBytes))
		return
	}
	if err := utils.ValidateFilename(header.Filename); err != nil {
		h.metrics.RecordUpload(monitoring.ResultRejected, 0)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open multipart file", zap.Error(err))
		h.metrics.RecordUpload(monitoring.ResultError, 0)
		respondError(c, http.StatusInternalServerError, upload.Message(upload.ErrUploadFailed, maxBytes))
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request.Context(), &upload.File{
		Session:     uploaderKey(c),
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		status, label := uploadStatus(err)
		h.metrics.RecordUpload(label, header.Size)
		respondError(c, status, upload.Message(err, maxBytes))
		return
	}

	h.metrics.RecordUpload(monitoring.ResultOK, result.Size)
	c.JSON(http.StatusOK, result)
}

func uploadStatus(err error) (int, string) {
	switch {
	case upload.IsClientError(err):
		return http.StatusBadRequest, monitoring.ResultRejected
	case errors.Is(err, upload.ErrInProgress):
		return http.StatusConflict, monitoring.ResultDuplicate
	case errors.Is(err, upload.ErrStoreMisconfigured):
		return http.StatusInternalServerError, monitoring.ResultMisconfig
	default:
		return http.StatusInternalServerError, monitoring.ResultError
	}
}

// Analyze forwards the uploaded file to the analysis backend
func (h *Handlers) Analyze(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "analyze")

	header, err := c.FormFile("file")
	if err != nil {
		timer.Stop(monitoring.ResultRejected)
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	f, closeFile, err := openAnalyzeFile(c, header)
	if err != nil {
		h.respondAnalyzeError(c, timer, err)
		return
	}
	defer closeFile()

	body, err := h.analyses.Analyze(c.Request.Context(), f)
	if err != nil {
		h.respondAnalyzeError(c, timer, err)
		return
	}

	timer.Stop(monitoring.ResultOK)
	c.Data(http.StatusOK, "application/json", body)
}

// AnalyzeReference analyzes a previously uploaded file by its URL
func (h *Handlers) AnalyzeReference(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "reference")

	body, err := h.analyses.AnalyzeReference(c.Request.Context(), uploaderKey(c), c.Query("file"), c.Query("filename"))
	if errors.Is(err, analyze.ErrNothingToAnalyze) {
		timer.Stop(monitoring.ResultRejected)
		c.JSON(http.StatusOK, types.EmptyAnalysisResponse{Status: "empty"})
		return
	}
	if err != nil {
		h.respondAnalyzeError(c, timer, err)
		return
	}

	timer.Stop(monitoring.ResultOK)
	c.Data(http.StatusOK, "application/json", body)
}

// Export relays the uploaded file to the backend export for :format
func (h *Handlers) Export(c *gin.Context) {
	format := c.Param("format")

	header, err := c.FormFile("file")
	if err != nil {
		h.metrics.RecordExport(format, monitoring.ResultRejected)
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	f, closeFile, err := openAnalyzeFile(c, header)
	if err != nil {
		h.respondExportError(c, format, err)
		return
	}
	defer closeFile()

	att, err := h.analyses.Export(c.Request.Context(), format, f)
	if err != nil {
		h.respondExportError(c, format, err)
		return
	}

	h.metrics.RecordExport(format, monitoring.ResultOK)
	c.Header("Content-Disposition", att.Disposition)
	c.Data(http.StatusOK, att.ContentType, att.Body)
}

func (h *Handlers) respondExportError(c *gin.Context, format string, err error) {
	status, message, label := analyzeStatus(err)
	if errors.Is(err, analyze.ErrUnsupportedFormat) {
		// Keep arbitrary path segments out of label values
		format = "unsupported"
	}
	h.metrics.RecordExport(format, label)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		h.logger.Error("Export failed", zap.Error(err))
	}
	respondError(c, status, message)
}

// openAnalyzeFile validates the part's filename and opens it. A bad
// filename is reported as analyze.ErrInvalidFilename.
func openAnalyzeFile(c *gin.Context, header *multipart.FileHeader) (*analyze.File, func(), error) {
	if err := utils.ValidateFilename(header.Filename); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", analyze.ErrInvalidFilename, err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open multipart file: %w", err)
	}
	return &analyze.File{
		Session:     uploaderKey(c),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func (h *Handlers) respondAnalyzeError(c *gin.Context, timer *monitoring.Timer, err error) {
	status, message, label := analyzeStatus(err)
	timer.Stop(label)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		h.logger.Error("Analysis failed", zap.Error(err))
	}
	respondError(c, status, message)
}

// analyzeStatus maps relay errors to status, client message and metric label
func analyzeStatus(err error) (int, string, string) {
	var upstream *analyze.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return http.StatusBadGateway, upstream.Body, monitoring.ResultUpstream
	case analyze.IsClientError(err):
		return http.StatusBadRequest, err.Error(), monitoring.ResultRejected
	case errors.Is(err, analyze.ErrInProgress):
		return http.StatusConflict, "An analysis of this file is already in progress", monitoring.ResultDuplicate
	case errors.Is(err, analyze.ErrSourceUnavailable):
		return http.StatusBadGateway, err.Error(), monitoring.ResultUpstream
	case resilience.IsOpen(err):
		return http.StatusInternalServerError, "Analysis backend is temporarily unavailable", monitoring.ResultUnavailable
	default:
		message := err.Error()
		if message == "" {
			message = "Internal error"
		}
		return http.StatusInternalServerError, message, monitoring.ResultError
	}
}
