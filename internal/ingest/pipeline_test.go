package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/pdfbinder/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(r *testutil.FakeRenderer) *Pipeline {
	return NewPipeline(testutil.FakeCodec{}, r, 2, 0)
}

func pdfFile(name, tag string, pages int) File {
	return File{Name: name, ContentType: "application/pdf", Data: testutil.StubPDF(tag, pages)}
}

func TestIngestBatch_AcceptsPDFsRejectsOthers(t *testing.T) {
	tests := []struct {
		name     string
		file     File
		accepted bool
	}{
		{"by media type", File{Name: "upload", ContentType: "application/pdf", Data: testutil.StubPDF("a", 1)}, true},
		{"by suffix", File{Name: "scan.PDF", ContentType: "application/octet-stream", Data: testutil.StubPDF("a", 1)}, true},
		{"plain text", File{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hello")}, false},
		{"image", File{Name: "photo.png", ContentType: "image/png", Data: []byte{0x89}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(&testutil.FakeRenderer{})
			res, err := p.IngestBatch(context.Background(), []File{tt.file})
			require.NoError(t, err)

			if tt.accepted {
				assert.Len(t, res.Accepted, 1)
				assert.Zero(t, res.Rejected)
			} else {
				assert.Empty(t, res.Accepted)
				assert.Equal(t, 1, res.Rejected)
			}
		})
	}
}

func TestIngestBatch_BuildsDocumentAndPages(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{})

	res, err := p.IngestBatch(context.Background(), []File{pdfFile("report.pdf", "r", 3)})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)

	entry := res.Accepted[0]
	assert.NotEmpty(t, entry.Doc.ID)
	assert.Equal(t, "report.pdf", entry.Doc.Name)
	assert.Equal(t, 3, entry.Doc.PageCount)
	assert.Equal(t, testutil.StubPDF("r", 3), entry.Doc.Data)

	require.Len(t, entry.Pages, 3)
	seen := map[string]bool{}
	for i, page := range entry.Pages {
		assert.Equal(t, entry.Doc.ID, page.DocID)
		assert.Equal(t, "report.pdf", page.DocName)
		assert.Equal(t, i+1, page.PageNumber)
		assert.True(t, page.HasPreview())
		assert.NotEqual(t, entry.Doc.ID, page.ID)
		assert.False(t, seen[page.ID], "page IDs are unique")
		seen[page.ID] = true
	}
}

func TestIngestBatch_DecodeFailureIsPerFileAtomic(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{})

	files := []File{
		pdfFile("one.pdf", "a", 1),
		{Name: "broken.pdf", ContentType: "application/pdf", Data: []byte("garbage")},
		pdfFile("three.pdf", "c", 2),
	}

	res, err := p.IngestBatch(context.Background(), files)
	require.NoError(t, err, "a decode failure is never fatal for the batch")

	require.Len(t, res.Accepted, 2)
	assert.Equal(t, "one.pdf", res.Accepted[0].Doc.Name)
	assert.Equal(t, "three.pdf", res.Accepted[1].Doc.Name)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "broken.pdf")
}

func TestIngestBatch_RenderFailureKeepsPageWithoutPreview(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{FailPages: map[string]bool{"a#2": true}})

	res, err := p.IngestBatch(context.Background(), []File{pdfFile("a.pdf", "a", 3)})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)

	pages := res.Accepted[0].Pages
	require.Len(t, pages, 3, "the failed page is still orderable and exportable")
	assert.True(t, pages[0].HasPreview())
	assert.False(t, pages[1].HasPreview())
	assert.True(t, pages[2].HasPreview())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "page 2")
}

func TestIngestBatch_PassesConfiguredPreviewScale(t *testing.T) {
	r := &testutil.FakeRenderer{}
	p := NewPipeline(testutil.FakeCodec{}, r, 1, 0.5)

	_, err := p.IngestBatch(context.Background(), []File{pdfFile("a.pdf", "a", 2)})
	require.NoError(t, err)

	scales := r.Scales()
	require.Len(t, scales, 2)
	for _, s := range scales {
		assert.Equal(t, 0.5, s)
	}
}

func TestIngestBatch_PreservesInputOrderDespiteParallelism(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{})

	var files []File
	for i := 0; i < 8; i++ {
		files = append(files, pdfFile(fmt.Sprintf("f%d.pdf", i), fmt.Sprintf("t%d", i), 1+i%3))
	}

	res, err := p.IngestBatch(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.Accepted, 8)
	for i, entry := range res.Accepted {
		assert.Equal(t, fmt.Sprintf("f%d.pdf", i), entry.Doc.Name)
	}
}

func TestIngestBatch_StoredPayloadIsIndependent(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{})

	original := testutil.StubPDF("a", 1)
	upload := make([]byte, len(original))
	copy(upload, original)

	res, err := p.IngestBatch(context.Background(), []File{{Name: "a.pdf", ContentType: "application/pdf", Data: upload}})
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)

	// A renderer that scribbles on its input must not damage the copy
	// retained for export.
	for i := range upload {
		upload[i] = 0
	}
	assert.Equal(t, original, res.Accepted[0].Doc.Data)
}

func TestIngestBatch_EmptyAndAllRejected(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{})

	res, err := p.IngestBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Zero(t, res.Rejected)

	res, err = p.IngestBatch(context.Background(), []File{{Name: "a.txt", ContentType: "text/plain"}})
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Equal(t, 1, res.Rejected)
}

func TestIngestBatch_Cancellation(t *testing.T) {
	p := newTestPipeline(&testutil.FakeRenderer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.IngestBatch(ctx, []File{pdfFile("a.pdf", "a", 1)})
	assert.ErrorIs(t, err, context.Canceled)
}
