// Package export resolves the workspace's ordered page references into a
// single composed output document.
package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdfbinder/backend/internal/codec"
	"github.com/pdfbinder/backend/internal/models"
)

// ErrNoPages is returned when export is requested on an empty workspace.
// The UI is expected to disable the trigger, but the resolver guards it.
var ErrNoPages = errors.New("export: workspace has no pages")

// DefaultOutputName names the download when the user supplied no name.
const DefaultOutputName = "merged"

// Resolver composes output documents through the codec port.
type Resolver struct {
	codec codec.Codec
}

// NewResolver creates a resolver over the given codec.
func NewResolver(c codec.Codec) *Resolver {
	return &Resolver{codec: c}
}

// Compose resolves each page reference in snapshot order back to its
// source bytes and serializes a new document. Each referenced source is
// decoded at most once no matter how many pages it contributes. A page
// whose owning document is missing is skipped, not fatal; that state
// should be unreachable given cascading delete. Sources are never mutated.
func (r *Resolver) Compose(ctx context.Context, snap models.WorkspaceSnapshot) ([]byte, error) {
	if len(snap.Pages) == 0 {
		return nil, ErrNoPages
	}

	decoded := make(map[string]codec.Document, len(snap.Documents))
	builder := r.codec.NewBuilder()
	appended := 0

	for _, ref := range snap.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := snap.FindDocument(ref.DocID)
		if src == nil {
			fmt.Printf("[Export] Skipping page %s: source document %s missing\n", ref.ID, ref.DocID)
			continue
		}

		doc, ok := decoded[src.ID]
		if !ok {
			var err error
			doc, err = r.codec.Open(src.Data)
			if err != nil {
				return nil, fmt.Errorf("decoding %s: %w", src.Name, err)
			}
			decoded[src.ID] = doc
		}

		page, err := doc.ExtractPage(ref.PageNumber - 1)
		if err != nil {
			return nil, fmt.Errorf("extracting %s page %d: %w", src.Name, ref.PageNumber, err)
		}
		builder.AppendPage(page)
		appended++
	}

	if appended == 0 {
		return nil, ErrNoPages
	}

	out, err := builder.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing output: %w", err)
	}
	return out, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// OutputFilename sanitizes a user-supplied name into a download filename,
// replacing whitespace runs and falling back to the default for blank
// input. The ".pdf" suffix is always appended.
func OutputFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, ".pdf")
	name = whitespace.ReplaceAllString(name, "_")
	if name == "" {
		name = DefaultOutputName
	}
	return name + ".pdf"
}
