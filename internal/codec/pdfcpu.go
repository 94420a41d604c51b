package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCodec implements Codec on top of pdfcpu. Page handles are
// single-page PDFs trimmed out of their source; Serialize merges the
// accumulated handles in append order.
type PDFCodec struct {
	conf *model.Configuration
}

// NewPDFCodec creates a codec with relaxed validation, which tolerates the
// slightly off-spec files real-world uploads tend to be.
func NewPDFCodec() *PDFCodec {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCodec{conf: conf}
}

type pdfDocument struct {
	data      []byte
	pageCount int
	conf      *model.Configuration
}

// Open validates data and reports its page count.
func (c *PDFCodec) Open(data []byte) (Document, error) {
	n, err := api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrDecode)
	}
	return &pdfDocument{data: data, pageCount: n, conf: c.conf}, nil
}

func (d *pdfDocument) PageCount() int { return d.pageCount }

// ExtractPage trims the source down to the single requested page.
func (d *pdfDocument) ExtractPage(index int) (Page, error) {
	if index < 0 || index >= d.pageCount {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, d.pageCount)
	}

	var buf bytes.Buffer
	sel := []string{fmt.Sprintf("%d", index+1)}
	if err := api.Trim(bytes.NewReader(d.data), &buf, sel, d.conf); err != nil {
		return nil, fmt.Errorf("extracting page %d: %w", index+1, err)
	}
	return Page(buf.Bytes()), nil
}

type pdfBuilder struct {
	pages []Page
	conf  *model.Configuration
}

// NewBuilder returns an empty output builder.
func (c *PDFCodec) NewBuilder() Builder {
	return &pdfBuilder{conf: c.conf}
}

func (b *pdfBuilder) AppendPage(p Page) {
	b.pages = append(b.pages, p)
}

func (b *pdfBuilder) Serialize() ([]byte, error) {
	if len(b.pages) == 0 {
		return nil, fmt.Errorf("no pages appended")
	}
	if len(b.pages) == 1 {
		return b.pages[0], nil
	}

	readers := make([]io.ReadSeeker, len(b.pages))
	for i, p := range b.pages {
		readers[i] = bytes.NewReader(p)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, b.conf); err != nil {
		return nil, fmt.Errorf("merging %d pages: %w", len(b.pages), err)
	}
	return buf.Bytes(), nil
}
