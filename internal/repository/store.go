// internal/repository/store.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// KV is a byte-oriented key/value backend. Get reports found=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store holds one list of records.
type Store[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	SaveAll(ctx context.Context, items []T) error
}

// JSONStore keeps a list as a single JSON array under one key.
type JSONStore[T any] struct {
	kv  KV
	key string
}

func NewJSONStore[T any](kv KV, key string) *JSONStore[T] {
	return &JSONStore[T]{kv: kv, key: key}
}

func (s *JSONStore[T]) Key() string {
	return s.key
}

// GetAll returns the stored list, or an empty list when nothing was saved yet.
func (s *JSONStore[T]) GetAll(ctx context.Context) ([]T, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	if !found || len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveAll replaces the stored list.
func (s *JSONStore[T]) SaveAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}
