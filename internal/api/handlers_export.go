// handlers_export.go - Export trigger handler
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdfbinder/backend/internal/export"
)

type exportRequest struct {
	Name string `json:"name"`
}

// HandleExport composes the current page order into one PDF and returns
// it as a download. No partial file is ever offered: any compose failure
// yields an error response instead of bytes.
func (h *Handler) HandleExport(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	snap := h.deps.Workspace.Snapshot()
	out, err := h.deps.Resolver.Compose(c.Request().Context(), snap)
	if errors.Is(err, export.ErrNoPages) {
		return NewUnprocessableError("workspace has no pages to export")
	}
	if err != nil {
		return NewInternalError("failed to compose output document", err)
	}

	filename := export.OutputFilename(req.Name)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", out)
}
