package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores session keys in Redis without expiry.
//
// Multi-key saves run in a MULTI/EXEC pipeline so both session keys change
// together. The client is owned by the caller; Close does not close it.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a [RedisBackend]. A non-empty prefix namespaces every
// key as "<prefix>:<key>".
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{
		redis:  client,
		prefix: prefix,
	}
}

func (b *RedisBackend) key(k string) string {
	if b.prefix == "" {
		return k
	}
	return b.prefix + ":" + k
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.redis.Get(ctx, b.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return data, true, nil
}

func (b *RedisBackend) Save(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, b.key(e.Key), e.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, b.key(k))
	}
	if err := b.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Ping reports Redis availability.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

func (b *RedisBackend) Close() error { return nil }
