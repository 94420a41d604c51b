// Package render defines the thumbnail renderer port. A preview failure
// is recoverable; the ingestion pipeline keeps the page and just leaves
// its preview empty.
package render

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Renderer produces a preview payload for one page of a document.
// pageIndex is 0-based. scale hints at the preview size; implementations
// may ignore it.
type Renderer interface {
	RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error)
}

// PageExtractRenderer previews a page as a trimmed single-page PDF. The UI
// hands the payload to the browser's own PDF rasterizer, which keeps the
// backend free of a raster dependency.
type PageExtractRenderer struct {
	conf *model.Configuration
}

// NewPageExtractRenderer creates a renderer with relaxed validation.
func NewPageExtractRenderer() *PageExtractRenderer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PageExtractRenderer{conf: conf}
}

// RenderPage trims data down to the requested page.
func (r *PageExtractRenderer) RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error) {
	_ = scale // trimming keeps the page at its native size

	var buf bytes.Buffer
	sel := []string{fmt.Sprintf("%d", pageIndex+1)}
	if err := api.Trim(bytes.NewReader(data), &buf, sel, r.conf); err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", pageIndex+1, err)
	}
	return buf.Bytes(), nil
}

var _ Renderer = (*PageExtractRenderer)(nil)
