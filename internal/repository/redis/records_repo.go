// internal/repository/redis/records_repo.go
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RecordsRepository stores record lists as plain redis strings under a prefix.
type RecordsRepository struct {
	client *redis.Client
	prefix string
}

func NewRecordsRepository(client *redis.Client, prefix string) *RecordsRepository {
	return &RecordsRepository{client: client, prefix: prefix}
}

func (r *RecordsRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get records: %w", err)
	}
	return raw, true, nil
}

func (r *RecordsRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set records: %w", err)
	}
	return nil
}

func (r *RecordsRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
