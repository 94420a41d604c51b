package models

import "time"

// WorkspaceSnapshot is one consistent view of the workspace: the document
// set in insertion order and the page sequence in export order. It is both
// the read model handed to the export resolver and the unit of persistence
// (always written whole, never as a diff).
type WorkspaceSnapshot struct {
	Documents []*SourceDocument `json:"documents" msgpack:"documents"`
	Pages     []*PageReference  `json:"pages" msgpack:"pages"`
	Timestamp time.Time         `json:"timestamp" msgpack:"timestamp"`
}

// FindDocument returns the document with the given ID, or nil.
func (s *WorkspaceSnapshot) FindDocument(id string) *SourceDocument {
	for _, d := range s.Documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}
