package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const defaultRedisPrefix = "pcrs:cache:"

// RedisStore keeps each entry in a hash so a cache can be shared between
// processes, e.g. several CLI invocations against one backend.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithRedisTTL expires untouched entries; zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix, ttl: 24 * time.Hour}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DialRedis connects and pings, as the cache setup elsewhere does.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) redisKey(key Key) string {
	return s.prefix + key.String()
}

func (s *RedisStore) Get(ctx context.Context, key Key) (Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.redisKey(key)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("[RedisStore.Get] %w", err)
	}
	if len(fields) == 0 {
		return Entry{}, false, nil
	}
	updated, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("[RedisStore.Get] updated_at: %w", err)
	}
	return Entry{
		Data:        []byte(fields["data"]),
		UpdatedAt:   time.Unix(0, updated),
		Invalidated: fields["invalidated"] == "1",
	}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, entry Entry) error {
	rk := s.redisKey(key)
	invalidated := "0"
	if entry.Invalidated {
		invalidated = "1"
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, rk,
			"data", entry.Data,
			"updated_at", strconv.FormatInt(entry.UpdatedAt.UnixNano(), 10),
			"invalidated", invalidated,
		)
		if s.ttl > 0 {
			p.Expire(ctx, rk, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[RedisStore.Set] %w", err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, prefix Key) ([]Key, error) {
	redisKeys, keys, err := s.scan(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("[RedisStore.Invalidate] %w", err)
	}
	for _, rk := range redisKeys {
		if err := s.client.HSet(ctx, rk, "invalidated", "1").Err(); err != nil {
			return nil, fmt.Errorf("[RedisStore.Invalidate] %s: %w", rk, err)
		}
	}
	return keys, nil
}

func (s *RedisStore) Delete(ctx context.Context, prefix Key) ([]Key, error) {
	redisKeys, keys, err := s.scan(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("[RedisStore.Delete] %w", err)
	}
	if len(redisKeys) == 0 {
		return nil, nil
	}
	if err := s.client.Del(ctx, redisKeys...).Err(); err != nil {
		return nil, fmt.Errorf("[RedisStore.Delete] %w", err)
	}
	return keys, nil
}

func (s *RedisStore) scan(ctx context.Context, prefix Key) ([]string, []Key, error) {
	var redisKeys []string
	iter := s.client.Scan(ctx, 0, s.prefix+prefix.String()+"*", 100).Iterator()
	for iter.Next(ctx) {
		redisKeys = append(redisKeys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, nil, err
	}

	keys := make([]Key, 0, len(redisKeys))
	for _, rk := range redisKeys {
		k, err := ParseKey(rk[len(s.prefix):])
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
	}
	sortKeys(keys)
	return redisKeys, keys, nil
}
