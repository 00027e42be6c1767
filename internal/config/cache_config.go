package config

import "time"

type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

type CacheConfig interface {
	GetCacheBackend() CacheBackend
	GetRedisAddr() string
	GetCacheStaleTime() time.Duration
	GetSuggestionsTTL() time.Duration
}

type Cache struct {
	Backend        string        `envconfig:"PCRS_CACHE_BACKEND" default:"memory"`
	RedisAddr      string        `envconfig:"PCRS_REDIS_ADDR" default:"127.0.0.1:6379"`
	StaleTime      time.Duration `envconfig:"PCRS_CACHE_STALE_TIME" default:"0s"`
	SuggestionsTTL time.Duration `envconfig:"PCRS_SUGGESTIONS_TTL" default:"1h"`
}

var _ CacheConfig = Cache{}

func (c Cache) GetCacheBackend() CacheBackend {
	if CacheBackend(c.Backend) == CacheBackendRedis {
		return CacheBackendRedis
	}
	return CacheBackendMemory
}

func (c Cache) GetRedisAddr() string {
	return c.RedisAddr
}

// GetCacheStaleTime is how long a fetched list is served without refetching.
// Zero means every read refetches unless a request for the key is in flight.
func (c Cache) GetCacheStaleTime() time.Duration {
	return c.StaleTime
}

func (c Cache) GetSuggestionsTTL() time.Duration {
	return c.SuggestionsTTL
}
