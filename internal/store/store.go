// Package store provides durable key/value persistence for workspace
// snapshots. The workspace uses exactly one fixed key; every write
// replaces the previous value, so the store never accumulates history.
package store

// WorkspaceKey is the single key under which the workspace snapshot lives.
const WorkspaceKey = "workspace"

// Store is the persistence port. Absence on Get is normal (first run) and
// is reported through the found flag, not an error.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}
