package cache

import (
	"context"
	"time"
)

// Entry is a cached payload plus staleness metadata.
type Entry struct {
	Data        []byte
	UpdatedAt   time.Time
	Invalidated bool
}

// Store holds entries. Prefix operations return the keys they touched.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Set(ctx context.Context, key Key, entry Entry) error
	Invalidate(ctx context.Context, prefix Key) ([]Key, error)
	Delete(ctx context.Context, prefix Key) ([]Key, error)
}
