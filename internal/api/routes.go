// routes.go - Route registration and handler wiring
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/pdfbinder/backend/internal/export"
	"github.com/pdfbinder/backend/internal/ingest"
	"github.com/pdfbinder/backend/internal/workspace"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Workspace *workspace.Model
	Pipeline  *ingest.Pipeline
	Resolver  *export.Resolver
	Version   string
}

// Handler serves the workspace API.
type Handler struct {
	deps *Dependencies
}

// NewHandler creates the API handler.
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{deps: deps}
}

// RegisterRoutes registers all API routes with the echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.HTTPErrorHandler = ErrorHandler

	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)

	ws := apiGroup.Group("/workspace")
	ws.GET("", h.HandleGetWorkspace)
	ws.POST("/documents", h.HandleUploadDocuments)
	ws.DELETE("/documents/:id", h.HandleRemoveDocument)
	ws.DELETE("/pages/:id", h.HandleRemovePage)
	ws.PUT("/pages/:id/position", h.HandleReorderPage)
	ws.GET("/pages/:id/preview", h.HandleGetPreview)
	ws.POST("/reset", h.HandleReset)
	ws.POST("/export", h.HandleExport)
}
