package token

import (
	"sync"
	"time"
)

// rotatedSet holds the ids of refresh tokens that have already been
// exchanged. Entries are dropped once the token would have expired anyway.
type rotatedSet struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

func newRotatedSet() *rotatedSet {
	return &rotatedSet{expires: make(map[string]time.Time)}
}

// rotate records jti and reports false if it was already rotated.
func (r *rotatedSet) rotate(jti string, exp, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.expires {
		if now.After(e) {
			delete(r.expires, id)
		}
	}
	if _, seen := r.expires[jti]; seen {
		return false
	}
	r.expires[jti] = exp
	return true
}

func (r *rotatedSet) contains(jti string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.expires[jti]
	return ok
}
