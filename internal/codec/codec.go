// Package codec defines the document codec port: opening uploaded bytes,
// extracting pages as portable handles, and assembling a new document from
// a sequence of handles. The workspace core only ever talks to these
// interfaces; pdfcpu.go is the production implementation.
package codec

import "errors"

// ErrDecode reports that a payload could not be parsed as a document.
// Implementations wrap their parser's error around it.
var ErrDecode = errors.New("codec: malformed document")

// Page is an opaque, extracted single page ready to be appended to a
// builder. Handles are immutable and safe to append more than once.
type Page []byte

// Document is a decoded source document handle. Decoding is the expensive
// step; callers keep the handle around and extract any number of pages.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int
	// ExtractPage returns the page at the given 0-based index.
	ExtractPage(index int) (Page, error)
}

// Builder accumulates pages for a new output document.
type Builder interface {
	// AppendPage adds one page after all previously appended pages.
	AppendPage(p Page)
	// Serialize writes the accumulated pages out as one document.
	Serialize() ([]byte, error)
}

// Codec decodes source documents and creates output builders.
type Codec interface {
	// Open decodes data into a Document handle. Returns an error wrapping
	// ErrDecode when the bytes are not a valid document.
	Open(data []byte) (Document, error)
	// NewBuilder returns an empty output document builder.
	NewBuilder() Builder
}
