// internal/repository/file/state_repo.go
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fleetdash/internal/domain/auth"
)

// StateRepository persists a single login in a JSON file readable only by its owner.
type StateRepository struct {
	path string
}

func NewStateRepository(path string) *StateRepository {
	return &StateRepository{path: path}
}

func (r *StateRepository) Load(_ context.Context) (auth.State, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return auth.State{}, nil
	}
	if err != nil {
		return auth.State{}, fmt.Errorf("failed to read login state: %w", err)
	}

	var state auth.State
	if err := json.Unmarshal(raw, &state); err != nil {
		// An unreadable file is treated as signed out.
		return auth.State{}, nil
	}
	return state, nil
}

func (r *StateRepository) Save(_ context.Context, state auth.State) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode login state: %w", err)
	}
	if err := os.WriteFile(r.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write login state: %w", err)
	}
	return nil
}

func (r *StateRepository) Clear(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove login state: %w", err)
	}
	return nil
}
