package workspace

import (
	"fmt"

	"github.com/pdfbinder/backend/internal/store"
	"github.com/vmihailenco/msgpack/v5"
)

// Persistence is fire-and-forget relative to mutations: markDirty never
// blocks, and the loop always serializes the snapshot that is current when
// the write happens. Rapid mutations coalesce; the store converges to the
// latest in-memory state because each write is the whole snapshot.

func (m *Model) markDirty() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *Model) persistLoop() {
	for {
		select {
		case <-m.done:
			return
		case <-m.notify:
			if err := m.Flush(); err != nil {
				fmt.Printf("[Workspace] WARN: persist failed, in-memory state remains authoritative: %v\n", err)
			}
		}
	}
}

// Flush synchronously serializes the current snapshot and writes it to the
// store. Used by the persistence loop, by graceful shutdown, and by tests
// that need a deterministic write.
func (m *Model) Flush() error {
	m.mu.RLock()
	snap := m.snapshotLocked()
	resets := m.resets
	m.mu.RUnlock()

	blob, err := msgpack.Marshal(&snap)
	if err != nil {
		m.setPersistErr(err)
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	stale := m.resets != resets
	m.mu.RUnlock()
	if stale {
		// A reset landed after this snapshot was captured. Writing the
		// blob now would re-create the key Reset just removed.
		return nil
	}

	if err := m.st.Set(store.WorkspaceKey, blob); err != nil {
		m.setPersistErr(err)
		return fmt.Errorf("writing snapshot: %w", err)
	}

	m.mu.Lock()
	m.lastSaved = snap.Timestamp
	m.mu.Unlock()
	m.setPersistErr(nil)
	return nil
}

// PersistErr returns the most recent persistence failure, or nil when the
// last write succeeded. The UI surfaces this as a degraded-durability
// warning; the in-memory workspace stays fully usable either way.
func (m *Model) PersistErr() error {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	return m.persistErr
}

func (m *Model) setPersistErr(err error) {
	m.persistMu.Lock()
	m.persistErr = err
	m.persistMu.Unlock()
}

// Close stops the persistence loop after a final flush attempt.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if docs, pages := m.Counts(); docs > 0 || pages > 0 {
			if err := m.Flush(); err != nil {
				fmt.Printf("[Workspace] WARN: final flush failed: %v\n", err)
			}
		}
	})
}
