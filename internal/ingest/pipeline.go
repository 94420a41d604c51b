// Package ingest turns raw uploaded bytes into registered source
// documents and their page references. Ingestion is per-file atomic and
// batch-level best-effort: one undecodable file never sinks its batch.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfbinder/backend/internal/codec"
	"github.com/pdfbinder/backend/internal/models"
	"github.com/pdfbinder/backend/internal/render"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxParallel bounds concurrent decode/render work within a batch.
const DefaultMaxParallel = 4

// DefaultPreviewScale is the scale hint passed to the renderer.
const DefaultPreviewScale = 0.3

// File is one uploaded item, read fully before ingestion starts.
type File struct {
	Name         string
	ContentType  string
	LastModified time.Time
	Data         []byte
}

// Result reports one batch: what was accepted, how many inputs were not
// the target document type, and per-file warnings for decode and render
// failures. Warnings are informational; nothing in here is fatal.
type Result struct {
	Accepted []models.DocumentPages
	Rejected int
	Warnings []string
}

// Pipeline ingests batches of uploads.
type Pipeline struct {
	codec        codec.Codec
	renderer     render.Renderer
	maxParallel  int
	previewScale float64
}

// NewPipeline creates a pipeline over the given codec and renderer.
// Non-positive limits and scales fall back to the defaults.
func NewPipeline(c codec.Codec, r render.Renderer, maxParallel int, previewScale float64) *Pipeline {
	if maxParallel < 1 {
		maxParallel = DefaultMaxParallel
	}
	if previewScale <= 0 {
		previewScale = DefaultPreviewScale
	}
	return &Pipeline{
		codec:        c,
		renderer:     r,
		maxParallel:  maxParallel,
		previewScale: previewScale,
	}
}

// outcome is the per-file ingestion result, indexed so the final append
// order matches the input batch order regardless of which file finished
// decoding first.
type outcome struct {
	entry    *models.DocumentPages
	warnings []string
}

// IngestBatch processes one batch of uploads. Files that are not PDFs are
// counted as rejected. Accepted files are decoded and rendered in
// parallel, bounded by the pipeline's limit; a decode failure drops that
// file alone, a render failure keeps the page without a preview.
func (p *Pipeline) IngestBatch(ctx context.Context, files []File) (*Result, error) {
	res := &Result{}

	var accepted []File
	for _, f := range files {
		if !isPDF(f) {
			res.Rejected++
			continue
		}
		accepted = append(accepted, f)
	}
	if len(accepted) == 0 {
		return res, nil
	}

	outcomes := make([]outcome, len(accepted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for i, f := range accepted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.ingestFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only context cancellation surfaces here; per-file failures are
		// folded into outcomes.
		return nil, err
	}

	for _, o := range outcomes {
		if o.entry != nil {
			res.Accepted = append(res.Accepted, *o.entry)
		}
		res.Warnings = append(res.Warnings, o.warnings...)
	}
	return res, nil
}

// ingestFile decodes one file and renders its previews. Either the whole
// file contributes (document plus one reference per page) or none of it.
func (p *Pipeline) ingestFile(f File) outcome {
	var o outcome

	// The stored payload stays independent of anything handed to the
	// codec or renderer; some implementations take ownership of the
	// buffer they are given.
	stored := make([]byte, len(f.Data))
	copy(stored, f.Data)

	doc, err := p.codec.Open(f.Data)
	if err != nil {
		fmt.Printf("[Ingest] %s: decode failed: %v\n", f.Name, err)
		o.warnings = append(o.warnings, fmt.Sprintf("%s: not a readable PDF", f.Name))
		return o
	}

	source := &models.SourceDocument{
		ID:           uuid.New().String(),
		Name:         f.Name,
		Size:         int64(len(stored)),
		LastModified: f.LastModified,
		PageCount:    doc.PageCount(),
		Data:         stored,
		AddedAt:      time.Now().UTC(),
	}

	pages := make([]*models.PageReference, 0, doc.PageCount())
	for n := 1; n <= doc.PageCount(); n++ {
		ref := &models.PageReference{
			ID:         uuid.New().String(),
			DocID:      source.ID,
			DocName:    source.Name,
			PageNumber: n,
		}
		preview, err := p.renderer.RenderPage(f.Data, n-1, p.previewScale)
		if err != nil {
			fmt.Printf("[Ingest] %s page %d: preview failed: %v\n", f.Name, n, err)
			o.warnings = append(o.warnings, fmt.Sprintf("%s: no preview for page %d", f.Name, n))
		} else {
			ref.Preview = preview
		}
		pages = append(pages, ref)
	}

	o.entry = &models.DocumentPages{Doc: source, Pages: pages}
	return o
}

// isPDF accepts files by declared media type or filename suffix.
func isPDF(f File) bool {
	if strings.EqualFold(strings.TrimSpace(f.ContentType), "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}
