package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vendaa/vendaa/internal/errors"
	"github.com/vendaa/vendaa/internal/notify"
)

// FileStore persists values as a flat JSON object in a single file.
//
// The file is re-read on every Get and rewritten atomically (temp file +
// rename) on every change. Permissions are 0600 because the file holds
// bearer tokens.
type FileStore struct {
	path   string
	mu     sync.Mutex
	broker *notify.Broker
}

// NewFileStore creates a store backed by path. The file is created lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		broker: notify.NewBroker(),
	}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", f.path), err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.NewFileUnmarshalError(f.path, "JSON", err)
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", dir), err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to encode state", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write state", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to set state permissions", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to close state file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to replace %s", f.path), err)
	}
	return nil
}

// Get returns the value for key.
func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	values, err := f.load()
	if err == nil {
		values[key] = value
		err = f.save(values)
	}
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.broker.Publish()
	return nil
}

// Delete removes keys. A corrupt file is replaced rather than kept, so that
// logout always succeeds in clearing credentials.
func (f *FileStore) Delete(keys ...string) error {
	f.mu.Lock()
	values, err := f.load()
	if err != nil {
		values = map[string]string{}
	}
	for _, k := range keys {
		delete(values, k)
	}
	err = f.save(values)
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.broker.Publish()
	return nil
}

// Subscribe registers for change notifications.
func (f *FileStore) Subscribe() (<-chan struct{}, func()) {
	return f.broker.Subscribe()
}

// Watch publishes a notification whenever the backing file is written,
// replaced, or removed by anyone. It blocks until ctx is done.
func (f *FileStore) Watch(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", dir), err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched because atomic replacement swaps the inode.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.broker.Publish()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", f.path, err)
		}
	}
}
