// handlers_documents.go - Upload and ingestion handlers
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pdfbinder/backend/internal/ingest"
)

// uploadResponse reports one ingested batch back to the UI.
type uploadResponse struct {
	Workspace workspaceView `json:"workspace"`
	Added     int           `json:"added"`
	Rejected  int           `json:"rejected"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// HandleUploadDocuments accepts a multipart batch of files, ingests the
// PDFs among them and appends the result to the workspace in upload
// order. Non-PDF items and undecodable files never fail the batch.
func (h *Handler) HandleUploadDocuments(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected multipart form upload", err)
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return NewValidationError("files")
	}

	// Clients send one lastModified field per file, in file order.
	lastModified := form.Value["lastModified"]

	files := make([]ingest.File, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		data, err := readMultipartFile(fh)
		if err != nil {
			return NewInternalError(fmt.Sprintf("failed to read %s", fh.Filename), err)
		}
		files = append(files, ingest.File{
			Name:         fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			LastModified: parseLastModified(valueAt(lastModified, i)),
			Data:         data,
		})
	}

	result, err := h.deps.Pipeline.IngestBatch(c.Request().Context(), files)
	if err != nil {
		// Only cancellation reaches here; per-file failures are warnings.
		return NewInternalError("ingestion interrupted", err)
	}

	h.deps.Workspace.AddDocuments(result.Accepted)

	return c.JSON(http.StatusCreated, uploadResponse{
		Workspace: h.workspaceView(),
		Added:     len(result.Accepted),
		Rejected:  result.Rejected,
		Warnings:  result.Warnings,
	})
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// valueAt returns the i-th form value, or "" when the client sent fewer
// values than files.
func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// parseLastModified interprets one lastModified form value as Unix
// milliseconds, the value browsers expose for picked files.
func parseLastModified(v string) time.Time {
	if v == "" {
		return time.Now().UTC()
	}
	var ms int64
	if _, err := fmt.Sscanf(v, "%d", &ms); err != nil || ms <= 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}
