// internal/repository/file/records_repo.go
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RecordsRepository keeps each key in its own JSON file under dir.
type RecordsRepository struct {
	dir string
	mu  sync.Mutex
}

func NewRecordsRepository(dir string) (*RecordsRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create records dir: %w", err)
	}
	return &RecordsRepository{dir: dir}, nil
}

func (r *RecordsRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read records file: %w", err)
	}
	return raw, true, nil
}

// Put writes through a temp file so a crash never leaves a half-written list.
func (r *RecordsRepository) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmp, err := os.CreateTemp(r.dir, ".records-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close records file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return fmt.Errorf("failed to replace records file: %w", err)
	}
	return nil
}

func (r *RecordsRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete records file: %w", err)
	}
	return nil
}

// path maps key to a file name. Bytes outside [A-Za-z0-9_-] are written as
// %XX, so distinct keys never share a file.
func (r *RecordsRepository) path(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return filepath.Join(r.dir, b.String()+".json")
}
