// Package testutil provides in-memory fakes for the codec, renderer and
// session store ports so core packages can be tested without pdfcpu or
// disk I/O.
package testutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfbinder/backend/internal/codec"
	"github.com/pdfbinder/backend/internal/store"
)

// StubPDF builds a fake document payload the FakeCodec understands: a tag
// identifying the document and its page count.
func StubPDF(tag string, pages int) []byte {
	return []byte(fmt.Sprintf("stub:%s:%d", tag, pages))
}

// FakeCodec implements codec.Codec over StubPDF payloads. Extracted pages
// carry "<tag>#<pageNumber>" so tests can assert exact output order, and
// Serialize joins them as "merged:<p1>|<p2>|...".
type FakeCodec struct{}

func parseStub(data []byte) (tag string, pages int, err error) {
	parts := strings.Split(string(data), ":")
	if len(parts) != 3 || parts[0] != "stub" {
		return "", 0, fmt.Errorf("%w: not a stub payload", codec.ErrDecode)
	}
	pages, err = strconv.Atoi(parts[2])
	if err != nil || pages < 1 {
		return "", 0, fmt.Errorf("%w: bad page count", codec.ErrDecode)
	}
	return parts[1], pages, nil
}

func (FakeCodec) Open(data []byte) (codec.Document, error) {
	tag, pages, err := parseStub(data)
	if err != nil {
		return nil, err
	}
	return &fakeDocument{tag: tag, pages: pages}, nil
}

func (FakeCodec) NewBuilder() codec.Builder {
	return &fakeBuilder{}
}

type fakeDocument struct {
	tag   string
	pages int
}

func (d *fakeDocument) PageCount() int { return d.pages }

func (d *fakeDocument) ExtractPage(index int) (codec.Page, error) {
	if index < 0 || index >= d.pages {
		return nil, fmt.Errorf("page index %d out of range", index)
	}
	return codec.Page(fmt.Sprintf("%s#%d", d.tag, index+1)), nil
}

type fakeBuilder struct {
	parts []string
}

func (b *fakeBuilder) AppendPage(p codec.Page) {
	b.parts = append(b.parts, string(p))
}

func (b *fakeBuilder) Serialize() ([]byte, error) {
	if len(b.parts) == 0 {
		return nil, errors.New("no pages appended")
	}
	return []byte("merged:" + strings.Join(b.parts, "|")), nil
}

// FakeRenderer returns "preview:<tag>#<pageNumber>" payloads. Pages listed
// in FailPages simulate render failures.
type FakeRenderer struct {
	// FailPages maps "<tag>#<pageNumber>" to forced failure.
	FailPages map[string]bool
	// FailAll makes every render fail.
	FailAll bool

	mu     sync.Mutex
	scales []float64
}

// Scales returns the scale hints received so far, in call order.
func (r *FakeRenderer) Scales() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.scales...)
}

func (r *FakeRenderer) RenderPage(data []byte, pageIndex int, scale float64) ([]byte, error) {
	r.mu.Lock()
	r.scales = append(r.scales, scale)
	r.mu.Unlock()

	tag, pages, err := parseStub(data)
	if err != nil {
		return nil, err
	}
	if pageIndex < 0 || pageIndex >= pages {
		return nil, fmt.Errorf("page index %d out of range", pageIndex)
	}
	key := fmt.Sprintf("%s#%d", tag, pageIndex+1)
	if r.FailAll || r.FailPages[key] {
		return nil, fmt.Errorf("render failed for %s", key)
	}
	return []byte("preview:" + key), nil
}

// MockStore implements store.Store in memory, with switches to simulate
// persistence failures.
type MockStore struct {
	mu     sync.Mutex
	values map[string][]byte

	FailSet    bool
	FailGet    bool
	FailRemove bool

	// SetCalls counts writes, including failed ones.
	SetCalls int
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string][]byte)}
}

func (m *MockStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return nil, false, errors.New("mock store: get failed")
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MockStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.FailSet {
		return errors.New("mock store: set failed")
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.values[key] = cp
	return nil
}

func (m *MockStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove {
		return errors.New("mock store: remove failed")
	}
	delete(m.values, key)
	return nil
}

func (m *MockStore) Close() error { return nil }

// Has reports whether a value exists for key.
func (m *MockStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

var _ store.Store = (*MockStore)(nil)
