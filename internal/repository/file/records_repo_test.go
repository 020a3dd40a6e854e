package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewRecordsRepository(filepath.Join(dir, "records"))
	require.NoError(t, err)

	_, found, err := repo.Get(ctx, "fleet_trips")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Put(ctx, "fleet_trips", []byte(`[1]`)))
	require.NoError(t, repo.Put(ctx, "fleet_trips", []byte(`[1,2]`)))

	t.Run("survives a new instance", func(t *testing.T) {
		again, err := NewRecordsRepository(filepath.Join(dir, "records"))
		require.NoError(t, err)
		raw, found, err := again.Get(ctx, "fleet_trips")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[1,2]`, string(raw))
	})

	t.Run("keys are escaped into file names", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, "fleet_trips:+254 711/../x", []byte(`[]`)))
		_, err := os.Stat(filepath.Join(dir, "records", "fleet_trips%3A%2B254%20711%2F%2E%2E%2Fx.json"))
		assert.NoError(t, err)
	})

	t.Run("keys differing only in punctuation stay apart", func(t *testing.T) {
		keys := []string{"fleet_trips:+254711", "fleet_trips: 254711", "fleet_trips:_254711", "fleet_trips:%2B254711"}
		for i, key := range keys {
			require.NoError(t, repo.Put(ctx, key, []byte(fmt.Sprintf(`[%d]`, i))))
		}
		for i, key := range keys {
			raw, found, err := repo.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, found, key)
			assert.Equal(t, fmt.Sprintf(`[%d]`, i), string(raw), key)
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(dir, "records", ".records-*"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "fleet_trips"))
		require.NoError(t, repo.Delete(ctx, "fleet_trips"))
		_, found, err := repo.Get(ctx, "fleet_trips")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
