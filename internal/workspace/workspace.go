// Package workspace holds the authoritative in-memory state: the set of
// source documents and the independently ordered page sequence that
// becomes the export order. All mutations are synchronous on the in-memory
// state; each one schedules an asynchronous full-snapshot write to the
// session store (see persist.go).
package workspace

import (
	"fmt"
	"sync"
	"time"

	"github.com/pdfbinder/backend/internal/models"
	"github.com/pdfbinder/backend/internal/store"
	"github.com/vmihailenco/msgpack/v5"
)

// Model is the aggregate root. Safe for concurrent use.
type Model struct {
	mu        sync.RWMutex
	docs      []*models.SourceDocument
	docIndex  map[string]*models.SourceDocument
	pages     []*models.PageReference
	lastSaved time.Time

	st        store.Store
	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// writeMu serializes store writes against Reset's key removal. resets
	// counts resets (guarded by mu); a snapshot captured before the latest
	// reset must never be written, or the cleared workspace would come
	// back on the next startup.
	writeMu sync.Mutex
	resets  uint64

	persistMu  sync.Mutex
	persistErr error // last persistence failure, nil once a write succeeds again
}

// NewModel creates an empty workspace backed by st and starts its
// persistence loop. Call Close when done.
func NewModel(st store.Store) *Model {
	m := &Model{
		docIndex: make(map[string]*models.SourceDocument),
		st:       st,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go m.persistLoop()
	return m
}

// Hydrate loads the persisted snapshot, if any, into an empty model.
// Pages whose owning document is missing and duplicate page IDs are
// dropped rather than rehydrated; the invariants hold even against a
// snapshot written by a buggy or older build.
func (m *Model) Hydrate() error {
	blob, found, err := m.st.Get(store.WorkspaceKey)
	if err != nil {
		return fmt.Errorf("reading persisted workspace: %w", err)
	}
	if !found {
		return nil
	}

	var snap models.WorkspaceSnapshot
	if err := msgpack.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("decoding persisted workspace: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs = m.docs[:0]
	m.docIndex = make(map[string]*models.SourceDocument, len(snap.Documents))
	for _, d := range snap.Documents {
		if d == nil || d.ID == "" {
			continue
		}
		if _, dup := m.docIndex[d.ID]; dup {
			continue
		}
		m.docs = append(m.docs, d)
		m.docIndex[d.ID] = d
	}

	m.pages = m.pages[:0]
	seen := make(map[string]struct{}, len(snap.Pages))
	for _, p := range snap.Pages {
		if p == nil || p.ID == "" {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if _, ok := m.docIndex[p.DocID]; !ok {
			continue
		}
		seen[p.ID] = struct{}{}
		m.pages = append(m.pages, p)
	}

	m.lastSaved = snap.Timestamp
	fmt.Printf("[Workspace] Hydrated %d documents, %d pages (saved %s)\n",
		len(m.docs), len(m.pages), snap.Timestamp.Format(time.RFC3339))
	return nil
}

// AddDocuments appends ingested documents and their page references to
// the end of the page sequence, preserving batch order and, within a
// document, ascending page number. Documents whose ID is already present
// are skipped defensively.
func (m *Model) AddDocuments(batch []models.DocumentPages) {
	if len(batch) == 0 {
		return
	}

	m.mu.Lock()
	changed := false
	for _, entry := range batch {
		if entry.Doc == nil || entry.Doc.ID == "" {
			continue
		}
		if _, dup := m.docIndex[entry.Doc.ID]; dup {
			continue
		}
		m.docs = append(m.docs, entry.Doc)
		m.docIndex[entry.Doc.ID] = entry.Doc
		m.pages = append(m.pages, entry.Pages...)
		changed = true
	}
	m.mu.Unlock()

	if changed {
		m.markDirty()
	}
}

// RemoveDocument removes the document and cascades removal of every page
// owned by it, preserving the relative order of the remaining pages.
// Unknown IDs are a no-op, not an error.
func (m *Model) RemoveDocument(docID string) bool {
	m.mu.Lock()
	if _, ok := m.docIndex[docID]; !ok {
		m.mu.Unlock()
		return false
	}

	delete(m.docIndex, docID)
	for i, d := range m.docs {
		if d.ID == docID {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			break
		}
	}

	kept := m.pages[:0]
	for _, p := range m.pages {
		if p.DocID != docID {
			kept = append(kept, p)
		}
	}
	m.pages = kept
	m.mu.Unlock()

	m.markDirty()
	return true
}

// RemovePage removes a single page reference. The owning document stays
// even when it no longer contributes any page. Unknown IDs are a no-op.
func (m *Model) RemovePage(pageID string) bool {
	m.mu.Lock()
	idx := m.pageIndexLocked(pageID)
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	m.pages = append(m.pages[:idx], m.pages[idx+1:]...)
	m.mu.Unlock()

	m.markDirty()
	return true
}

// Reorder moves one page to a new index in the sequence. Every other page
// keeps its relative order: this is a single-element move, not a swap.
// Invalid endpoints and moves to the current position are no-ops.
func (m *Model) Reorder(pageID string, targetPos int) bool {
	m.mu.Lock()
	idx := m.pageIndexLocked(pageID)
	if idx < 0 || targetPos < 0 || targetPos >= len(m.pages) || targetPos == idx {
		m.mu.Unlock()
		return false
	}

	p := m.pages[idx]
	m.pages = append(m.pages[:idx], m.pages[idx+1:]...)
	m.pages = append(m.pages[:targetPos], append([]*models.PageReference{p}, m.pages[targetPos:]...)...)
	m.mu.Unlock()

	m.markDirty()
	return true
}

// Reset clears documents and pages and removes the persisted snapshot.
// Calling it on an empty workspace is harmless.
func (m *Model) Reset() {
	m.mu.Lock()
	m.docs = nil
	m.docIndex = make(map[string]*models.SourceDocument)
	m.pages = nil
	m.lastSaved = time.Time{}
	m.resets++
	m.mu.Unlock()

	m.writeMu.Lock()
	err := m.st.Remove(store.WorkspaceKey)
	m.writeMu.Unlock()
	if err != nil {
		fmt.Printf("[Workspace] WARN: clearing persisted snapshot: %v\n", err)
		m.setPersistErr(err)
	} else {
		m.setPersistErr(nil)
	}
}

// Snapshot returns a consistent copy of the current state. The slices are
// fresh; the document and page structs are shared, which is safe because
// payloads are immutable after ingestion.
func (m *Model) Snapshot() models.WorkspaceSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Model) snapshotLocked() models.WorkspaceSnapshot {
	snap := models.WorkspaceSnapshot{
		Documents: make([]*models.SourceDocument, len(m.docs)),
		Pages:     make([]*models.PageReference, len(m.pages)),
		Timestamp: time.Now().UTC(),
	}
	copy(snap.Documents, m.docs)
	copy(snap.Pages, m.pages)
	return snap
}

// Page returns the page reference with the given ID, or nil.
func (m *Model) Page(pageID string) *models.PageReference {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if idx := m.pageIndexLocked(pageID); idx >= 0 {
		return m.pages[idx]
	}
	return nil
}

// Counts returns the current document and page counts.
func (m *Model) Counts() (docs, pages int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), len(m.pages)
}

// LastSaved returns when a snapshot was last persisted successfully.
func (m *Model) LastSaved() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSaved
}

func (m *Model) pageIndexLocked(pageID string) int {
	for i, p := range m.pages {
		if p.ID == pageID {
			return i
		}
	}
	return -1
}
