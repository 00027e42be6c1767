package recsession

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jrsteele09/pcrs-client/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
	}
}

func (r *InMemoryRepo) Upsert(sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session.ProductIDs = slices.Clone(session.ProductIDs)
	session.Preferences.SecondaryActivities = slices.Clone(session.Preferences.SecondaryActivities)
	r.sessions[sessionID] = session
	return nil
}

func (r *InMemoryRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, errors.ErrNotFound
	}
	session.ProductIDs = slices.Clone(session.ProductIDs)
	return session, nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}
