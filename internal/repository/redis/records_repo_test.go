package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsRepository(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRecordsRepository(client, "records:")

	_, found, err := repo.Get(ctx, "fleet_trips")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Put(ctx, "fleet_trips", []byte(`[{"id":"a"}]`)))
	stored, err := mr.Get("records:fleet_trips")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, stored)
	assert.Zero(t, mr.TTL("records:fleet_trips"), "records do not expire")

	raw, found, err := repo.Get(ctx, "fleet_trips")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, string(raw))

	require.NoError(t, repo.Delete(ctx, "fleet_trips"))
	assert.False(t, mr.Exists("records:fleet_trips"))

	t.Run("backend failure", func(t *testing.T) {
		mr.Close()
		_, _, err := repo.Get(ctx, "fleet_trips")
		assert.Error(t, err)
	})
}
