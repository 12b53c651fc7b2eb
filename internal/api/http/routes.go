package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/api/middleware"
)

// RegisterRoutes mounts the API on router. API requests read bodies of at
// most bodyLimit bytes plus multipart overhead. relay middleware runs only
// in front of the upload, analyze and export endpoints.
func RegisterRoutes(router *gin.Engine, h *Handlers, bodyLimit int64, relay ...gin.HandlerFunc) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.Use(middleware.BodyLimit(bodyLimit))

	// Landscape assessment
	landscape := api.Group("/landscape")
	landscape.GET("/categories", h.ListCategories)
	landscape.GET("/categories/:id", h.GetCategory)
	landscape.POST("/sessions", h.CreateSession)
	landscape.GET("/sessions/:id", h.GetSession)
	landscape.POST("/sessions/:id/next", h.NextStep)
	landscape.POST("/sessions/:id/previous", h.PreviousStep)
	landscape.POST("/sessions/:id/submit", h.Submit)
	landscape.POST("/sessions/:id/tools/toggle", h.ToggleTool)
	landscape.POST("/sessions/:id/custom-tools", h.AddCustomTool)
	landscape.POST("/sessions/:id/custom-tools/remove", h.RemoveCustomTool)
	landscape.GET("/sessions/:id/selections", h.GetSelections)
	landscape.GET("/sessions/:id/final", h.GetFinal)

	// Relays
	relays := api.Group("", relay...)
	relays.POST("/upload", h.Upload)
	relays.POST("/analyze", h.Analyze)
	relays.POST("/analyze/reference", h.AnalyzeReference)
	relays.POST("/export/:format", h.Export)

	// Frontend logs
	api.POST("/logs", h.StreamLogs)
}
