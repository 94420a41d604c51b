package models

import "time"

// SourceDocument is one uploaded PDF, kept as an immutable byte payload
// plus metadata. Data is never modified after ingestion; the export
// resolver reads it, it is not written back.
type SourceDocument struct {
	ID           string    `json:"id" msgpack:"id"`
	Name         string    `json:"name" msgpack:"name"`
	Size         int64     `json:"size" msgpack:"size"`
	LastModified time.Time `json:"lastModified" msgpack:"lastModified"`
	PageCount    int       `json:"pageCount" msgpack:"pageCount"`
	Data         []byte    `json:"-" msgpack:"data"`
	AddedAt      time.Time `json:"addedAt" msgpack:"addedAt"`
}
