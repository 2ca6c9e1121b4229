package dataaccess

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore adapts a Redis hash-per-table layout to the Store
// interface: each table is a Redis hash, each key a field within it.
// Keys whose field is absent (HMGET returns nil) are reported as
// unprocessed, mirroring the operational store's UnprocessedKeys
// semantics.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore wraps client, namespacing hash names under
// "<namespace>:<table>".
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) hashKey(table string) string {
	if s.namespace == "" {
		return table
	}
	return fmt.Sprintf("%s:%s", s.namespace, table)
}

func (s *RedisStore) MGet(ctx context.Context, table string, keys []string) (map[string][]byte, []string, error) {
	if len(keys) == 0 {
		return nil, nil, nil
	}

	values, err := s.client.HMGet(ctx, s.hashKey(table), keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("redis HMGET %s: %w", table, err)
	}

	found := make(map[string][]byte, len(keys))
	var unprocessed []string
	for i, v := range values {
		if v == nil {
			unprocessed = append(unprocessed, keys[i])
			continue
		}
		s, ok := v.(string)
		if !ok {
			unprocessed = append(unprocessed, keys[i])
			continue
		}
		found[keys[i]] = []byte(s)
	}

	return found, unprocessed, nil
}

var _ Store = (*RedisStore)(nil)
