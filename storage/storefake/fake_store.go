package storefake

import (
	"sort"
	"sync"

	"github.com/jrsteele09/pcrs-client/storage"
)

var _ storage.Store = (*FakeStore)(nil)

type FakeStore struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values: make(map[string]string),
	}
}

func (s *FakeStore) Get(key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

func (s *FakeStore) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
	return nil
}

func (s *FakeStore) Delete(keys ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *FakeStore) Keys() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
