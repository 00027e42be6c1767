// Package storage defines the client-local key/value store that holds
// session credentials and small preferences between runs.
package storage

import "errors"

var ErrKeyNotFound = errors.New("key not found")

// Store is a flat string key/value store. Writes are per key; there is no
// atomicity across keys.
type Store interface {
	// Get returns ErrKeyNotFound when the key is absent
	Get(key string) (string, error)
	Set(key, value string) error
	// Delete removes the keys, ignoring any that are absent
	Delete(keys ...string) error
	Keys() ([]string, error)
}
