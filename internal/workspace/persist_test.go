package workspace

import (
	"reflect"
	"testing"
	"time"

	"github.com/pdfbinder/backend/internal/models"
	"github.com/pdfbinder/backend/internal/store"
	"github.com/pdfbinder/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestFlushAndHydrate_RoundTrip(t *testing.T) {
	st := testutil.NewMockStore()

	m1 := NewModel(st)
	m1.AddDocuments([]models.DocumentPages{docWithPages("a", 2), docWithPages("b", 1)})
	require.True(t, m1.Reorder("b1", 0))
	require.NoError(t, m1.Flush())
	m1.Close()

	m2 := NewModel(st)
	t.Cleanup(m2.Close)
	require.NoError(t, m2.Hydrate())

	assert.Equal(t, pageIDs(m1), pageIDs(m2))

	s1, s2 := m1.Snapshot(), m2.Snapshot()
	require.Len(t, s2.Documents, len(s1.Documents))
	for i := range s1.Documents {
		assert.Equal(t, s1.Documents[i].ID, s2.Documents[i].ID)
		assert.Equal(t, s1.Documents[i].Name, s2.Documents[i].Name)
		assert.Equal(t, s1.Documents[i].PageCount, s2.Documents[i].PageCount)
		assert.Equal(t, s1.Documents[i].Data, s2.Documents[i].Data, "payload survives the round trip byte for byte")
	}
}

func TestHydrate_EmptyStoreIsFirstRun(t *testing.T) {
	m, _ := newTestModel(t)
	require.NoError(t, m.Hydrate())

	docs, pages := m.Counts()
	assert.Zero(t, docs)
	assert.Zero(t, pages)
}

func TestHydrate_DropsOrphanedAndDuplicatePages(t *testing.T) {
	st := testutil.NewMockStore()

	m1 := NewModel(st)
	entry := docWithPages("a", 2)
	orphan := &models.PageReference{ID: "x1", DocID: "gone", DocName: "gone.pdf", PageNumber: 1}
	dup := &models.PageReference{ID: "a1", DocID: entry.Doc.ID, DocName: entry.Doc.Name, PageNumber: 1}
	entry.Pages = append(entry.Pages, orphan, dup)
	m1.AddDocuments([]models.DocumentPages{entry})
	require.NoError(t, m1.Flush())
	m1.Close()

	m2 := NewModel(st)
	t.Cleanup(m2.Close)
	require.NoError(t, m2.Hydrate())

	assert.Equal(t, []string{"a1", "a2"}, pageIDs(m2))
}

func TestPersistFailure_StateStaysAuthoritative(t *testing.T) {
	st := testutil.NewMockStore()
	st.FailSet = true

	m := NewModel(st)
	t.Cleanup(m.Close)

	m.AddDocuments([]models.DocumentPages{docWithPages("a", 1)})
	assert.Error(t, m.Flush())
	assert.Error(t, m.PersistErr())

	// The in-memory model keeps working and the next successful write
	// supersedes everything that was lost.
	_, pages := m.Counts()
	assert.Equal(t, 1, pages)

	st.FailSet = false
	m.AddDocuments([]models.DocumentPages{docWithPages("b", 1)})
	require.NoError(t, m.Flush())
	assert.NoError(t, m.PersistErr())
	assert.True(t, st.Has(store.WorkspaceKey))
}

func TestMutationsPersistWithoutExplicitFlush(t *testing.T) {
	st := testutil.NewMockStore()
	m := NewModel(st)
	t.Cleanup(m.Close)

	m.AddDocuments([]models.DocumentPages{docWithPages("a", 2)})
	m.AddDocuments([]models.DocumentPages{docWithPages("b", 1)})
	require.True(t, m.Reorder("b1", 0))

	// The background loop coalesces the three notifications however it
	// likes; the store must still converge to the final page order.
	require.Eventually(t, func() bool {
		blob, found, err := st.Get(store.WorkspaceKey)
		if err != nil || !found {
			return false
		}
		var snap models.WorkspaceSnapshot
		if err := msgpack.Unmarshal(blob, &snap); err != nil {
			return false
		}
		ids := make([]string, 0, len(snap.Pages))
		for _, p := range snap.Pages {
			ids = append(ids, p.ID)
		}
		return reflect.DeepEqual(ids, []string{"b1", "a1", "a2"})
	}, 2*time.Second, 5*time.Millisecond)
}

// gatedStore blocks writes until released, so a test can hold the
// persistence loop inside a store write.
type gatedStore struct {
	*testutil.MockStore
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MockStore: testutil.NewMockStore(),
		entered:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
}

func (s *gatedStore) Set(key string, value []byte) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.MockStore.Set(key, value)
}

func TestReset_SupersedesInflightPersist(t *testing.T) {
	st := newGatedStore()
	m := NewModel(st)
	t.Cleanup(m.Close)

	m.AddDocuments([]models.DocumentPages{docWithPages("a", 2)})
	<-st.entered // the persistence loop is now mid-write

	done := make(chan struct{})
	go func() {
		m.Reset()
		close(done)
	}()

	close(st.release)
	<-done

	// The write that was in flight when Reset ran carried the pre-reset
	// state; it must not survive as the persisted snapshot.
	assert.False(t, st.Has(store.WorkspaceKey), "persisted snapshot survived the reset")

	m2 := NewModel(st)
	t.Cleanup(m2.Close)
	require.NoError(t, m2.Hydrate())
	docs, pages := m2.Counts()
	assert.Zero(t, docs)
	assert.Zero(t, pages)
}

func TestFlush_AlwaysWritesTheCurrentSnapshot(t *testing.T) {
	st := testutil.NewMockStore()
	m1 := NewModel(st)

	m1.AddDocuments([]models.DocumentPages{docWithPages("a", 1)})
	require.NoError(t, m1.Flush())
	m1.AddDocuments([]models.DocumentPages{docWithPages("b", 1)})
	require.NoError(t, m1.Flush())
	m1.Close()

	// Converges to the latest full state, not a diff.
	m2 := NewModel(st)
	t.Cleanup(m2.Close)
	require.NoError(t, m2.Hydrate())
	assert.Equal(t, []string{"a1", "b1"}, pageIDs(m2))
}
