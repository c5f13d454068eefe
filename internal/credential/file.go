package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the token in a small YAML document readable only by the owner.
type FileStore struct {
	path string
	key  string
	mu   sync.Mutex
}

func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: filepath.Clean(path), key: key}
}

func (f *FileStore) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[f.key], nil
}

func (f *FileStore) Set(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if token == "" {
		return f.remove()
	}

	values, err := f.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking sign-in.
		storeLogger.Warn().Err(err).Str("path", f.path).Msg("Discarding unreadable credentials file")
		values = map[string]string{}
	}
	values[f.key] = token
	return f.write(values)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remove()
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("failed to create credentials dir: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// remove deletes only our key; the file goes away when it becomes empty.
func (f *FileStore) remove() error {
	values, err := f.read()
	if err != nil {
		return os.Remove(f.path)
	}
	if _, ok := values[f.key]; !ok {
		return nil
	}

	delete(values, f.key)
	if len(values) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		return nil
	}
	return f.write(values)
}
