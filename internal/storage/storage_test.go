package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json")),
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(KeyAccessToken, "tok-a"))
			require.NoError(t, store.Set(KeyRefreshToken, "tok-r"))

			v, ok, err := store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok-a", v)

			require.NoError(t, store.Delete(KeyAccessToken, KeyRefreshToken, "missing"))

			_, ok, err = store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)
			_, ok, err = store.Get(KeyRefreshToken)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_SubscribeOnChange(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ch, cancel := store.Subscribe()
			defer cancel()

			require.NoError(t, store.Set(KeySelectedOrganizationID, "org-1"))

			select {
			case <-ch:
			case <-time.After(time.Second):
				t.Fatal("expected a change notification")
			}
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set(KeyAccessToken, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_ReadsThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	a := NewFileStore(path)
	b := NewFileStore(path)

	require.NoError(t, a.Set(KeyAccessToken, "tok"))

	v, ok, err := b.Get(KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, b.Delete(KeyAccessToken))

	_, ok, err = a.Get(KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok, "a must not serve a cached copy")
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	store := NewFileStore(path)

	_, _, err := store.Get(KeyAccessToken)
	require.Error(t, err)

	// Delete recovers from corruption so logout can always clear tokens.
	require.NoError(t, store.Delete(KeyAccessToken))
	_, ok, err := store.Get(KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_WatchSeesExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	watched := NewFileStore(path)
	other := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, unsubscribe := watched.Subscribe()
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- watched.Watch(ctx) }()

	// Give the watcher a moment to register the directory.
	deadline := time.After(3 * time.Second)
	for {
		require.NoError(t, other.Set(KeyAccessToken, "from-another-terminal"))
		select {
		case <-ch:
			cancel()
			require.NoError(t, <-done)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("watch did not report the external write")
		}
	}
}

func TestMemoryStore_Writes(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeySelectedOrganizationID, "a"))
	require.NoError(t, store.Set(KeySelectedOrganizationID, "b"))

	assert.Equal(t, 2, store.Writes(KeySelectedOrganizationID))
	assert.NoError(t, store.Watch(context.Background()))
}
