package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapKV map[string][]byte

func (m mapKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapKV) Put(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func (m mapKV) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type entry struct {
	ID   string  `json:"id"`
	Cost float64 `json:"cost"`
}

func TestJSONStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key is an empty list", func(t *testing.T) {
		got, err := NewJSONStore[entry](mapKV{}, "k").GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("round trip", func(t *testing.T) {
		kv := mapKV{}
		store := NewJSONStore[entry](kv, "k")
		require.NoError(t, store.SaveAll(ctx, []entry{{ID: "a", Cost: 1.5}, {ID: "b"}}))

		got, err := NewJSONStore[entry](kv, "k").GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []entry{{ID: "a", Cost: 1.5}, {ID: "b"}}, got)
	})

	t.Run("nil saves as an empty array", func(t *testing.T) {
		kv := mapKV{}
		require.NoError(t, NewJSONStore[entry](kv, "k").SaveAll(ctx, nil))
		assert.Equal(t, "[]", string(kv["k"]))
	})

	t.Run("null payload reads as empty", func(t *testing.T) {
		got, err := NewJSONStore[entry](mapKV{"k": []byte("null")}, "k").GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("corrupt payload is an error", func(t *testing.T) {
		_, err := NewJSONStore[entry](mapKV{"k": []byte("{not json")}, "k").GetAll(ctx)
		assert.Error(t, err)
	})
}
