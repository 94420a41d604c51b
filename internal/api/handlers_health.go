// handlers_health.go - Health check handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Documents int    `json:"documents"`
	Pages     int    `json:"pages"`
	// Persistence is "ok" or "degraded"; degraded means the last
	// snapshot write failed and only in-memory state is current.
	Persistence string `json:"persistence"`
}

// HandleHealth reports service status and workspace counts.
func (h *Handler) HandleHealth(c echo.Context) error {
	docs, pages := h.deps.Workspace.Counts()

	persistence := "ok"
	if h.deps.Workspace.PersistErr() != nil {
		persistence = "degraded"
	}

	return c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Version:     h.deps.Version,
		Documents:   docs,
		Pages:       pages,
		Persistence: persistence,
	})
}
