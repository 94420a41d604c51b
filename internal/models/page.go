package models

// PageReference points at one page of a SourceDocument and holds its
// position in the output order by virtue of its index in the workspace
// page sequence. It never copies page bytes; DocID is the ownership link.
//
// DocName is denormalized so the UI can label thumbnails without a
// document lookup. The document's Name stays the source of truth.
type PageReference struct {
	ID         string `json:"id" msgpack:"id"`
	DocID      string `json:"docId" msgpack:"docId"`
	DocName    string `json:"docName" msgpack:"docName"`
	PageNumber int    `json:"pageNumber" msgpack:"pageNumber"` // 1-based within the owning document
	Preview    []byte `json:"-" msgpack:"preview"`             // nil when rendering failed
}

// HasPreview reports whether a thumbnail was produced for this page.
func (p *PageReference) HasPreview() bool {
	return len(p.Preview) > 0
}

// DocumentPages pairs a freshly ingested document with its page
// references, one per page in ascending page number.
type DocumentPages struct {
	Doc   *SourceDocument
	Pages []*PageReference
}
