// handlers_workspace.go - Workspace read and mutation handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// documentView is the document shape served to the UI; the payload itself
// never travels over the snapshot endpoint.
type documentView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	PageCount    int       `json:"pageCount"`
	AddedAt      time.Time `json:"addedAt"`
}

// pageView is the page shape served to the UI. Preview bytes are fetched
// separately via the preview endpoint.
type pageView struct {
	ID         string `json:"id"`
	DocID      string `json:"docId"`
	DocName    string `json:"docName"`
	PageNumber int    `json:"pageNumber"`
	HasPreview bool   `json:"hasPreview"`
}

type workspaceView struct {
	Documents []documentView `json:"documents"`
	Pages     []pageView     `json:"pages"`
	LastSaved time.Time      `json:"lastSaved,omitempty"`
	// PersistWarning is set when the last snapshot write failed; the
	// in-memory workspace keeps working, durability is degraded.
	PersistWarning string `json:"persistWarning,omitempty"`
}

func (h *Handler) workspaceView() workspaceView {
	snap := h.deps.Workspace.Snapshot()

	view := workspaceView{
		Documents: make([]documentView, 0, len(snap.Documents)),
		Pages:     make([]pageView, 0, len(snap.Pages)),
		LastSaved: h.deps.Workspace.LastSaved(),
	}
	for _, d := range snap.Documents {
		view.Documents = append(view.Documents, documentView{
			ID:           d.ID,
			Name:         d.Name,
			Size:         d.Size,
			LastModified: d.LastModified,
			PageCount:    d.PageCount,
			AddedAt:      d.AddedAt,
		})
	}
	for _, p := range snap.Pages {
		view.Pages = append(view.Pages, pageView{
			ID:         p.ID,
			DocID:      p.DocID,
			DocName:    p.DocName,
			PageNumber: p.PageNumber,
			HasPreview: p.HasPreview(),
		})
	}
	if err := h.deps.Workspace.PersistErr(); err != nil {
		view.PersistWarning = "changes are not being saved: " + err.Error()
	}
	return view
}

// HandleGetWorkspace returns the current documents and page order.
func (h *Handler) HandleGetWorkspace(c echo.Context) error {
	return c.JSON(http.StatusOK, h.workspaceView())
}

// HandleRemoveDocument removes a document and all pages drawn from it.
func (h *Handler) HandleRemoveDocument(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if !h.deps.Workspace.RemoveDocument(id) {
		return NewNotFoundError("document", id)
	}
	return c.JSON(http.StatusOK, h.workspaceView())
}

// HandleRemovePage removes a single page from the sequence. The owning
// document stays even when it becomes page-less.
func (h *Handler) HandleRemovePage(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if !h.deps.Workspace.RemovePage(id) {
		return NewNotFoundError("page", id)
	}
	return c.JSON(http.StatusOK, h.workspaceView())
}

type reorderRequest struct {
	Position int `json:"position"`
}

// HandleReorderPage moves a page to a new position in the sequence.
func (h *Handler) HandleReorderPage(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	// A move to the current position is valid but changes nothing.
	h.deps.Workspace.Reorder(id, req.Position)
	if h.deps.Workspace.Page(id) == nil {
		return NewNotFoundError("page", id)
	}
	return c.JSON(http.StatusOK, h.workspaceView())
}

// HandleGetPreview serves the preview payload for one page.
func (h *Handler) HandleGetPreview(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	page := h.deps.Workspace.Page(id)
	if page == nil {
		return NewNotFoundError("page", id)
	}
	if !page.HasPreview() {
		return NewNotFoundError("preview for page", id)
	}
	return c.Blob(http.StatusOK, "application/pdf", page.Preview)
}

// HandleReset clears the workspace and its persisted snapshot.
func (h *Handler) HandleReset(c echo.Context) error {
	h.deps.Workspace.Reset()
	return c.JSON(http.StatusOK, h.workspaceView())
}
