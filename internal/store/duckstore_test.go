package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDuckStore(t *testing.T) *DuckStore {
	t.Helper()
	s, err := NewDuckStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDuckStore_SetGetRemove(t *testing.T) {
	s := newTestDuckStore(t)

	_, found, err := s.Get(WorkspaceKey)
	require.NoError(t, err)
	assert.False(t, found)

	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	require.NoError(t, s.Set(WorkspaceKey, payload))

	v, found, err := s.Get(WorkspaceKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload, v)

	require.NoError(t, s.Remove(WorkspaceKey))
	_, found, err = s.Get(WorkspaceKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remove(WorkspaceKey), "removing twice is a no-op")
}

func TestDuckStore_OverwriteWins(t *testing.T) {
	s := newTestDuckStore(t)

	require.NoError(t, s.Set(WorkspaceKey, []byte("first")))
	require.NoError(t, s.Set(WorkspaceKey, []byte("second")))

	v, found, err := s.Get(WorkspaceKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("second"), v)
}

func TestDuckStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewDuckStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set(WorkspaceKey, []byte("persisted")))
	require.NoError(t, s1.Close())

	s2, err := NewDuckStore(dir)
	require.NoError(t, err)
	defer s2.Close()

	v, found, err := s2.Get(WorkspaceKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("persisted"), v)
}
