package cache

import (
	"context"
	"sort"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

type memoryItem struct {
	key   Key
	entry Entry
}

// MemoryStore is the default Store.
type MemoryStore struct {
	items map[string]memoryItem
	lock  sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
	}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (Entry, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	item, ok := s.items[key.String()]
	return item.entry, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, entry Entry) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.items[key.String()] = memoryItem{key: NewKey(key...), entry: entry}
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, prefix Key) ([]Key, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var touched []Key
	for id, item := range s.items {
		if !item.key.HasPrefix(prefix) {
			continue
		}
		item.entry.Invalidated = true
		s.items[id] = item
		touched = append(touched, item.key)
	}
	sortKeys(touched)
	return touched, nil
}

func (s *MemoryStore) Delete(_ context.Context, prefix Key) ([]Key, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var touched []Key
	for id, item := range s.items {
		if item.key.HasPrefix(prefix) {
			delete(s.items, id)
			touched = append(touched, item.key)
		}
	}
	sortKeys(touched)
	return touched, nil
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
