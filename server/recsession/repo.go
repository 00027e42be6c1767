// Package recsession stores the development backend's anonymous
// recommendation sessions, keyed by the client-generated session id.
package recsession

import (
	"time"

	"github.com/jrsteele09/pcrs-client/recommender"
)

type Session struct {
	Preferences recommender.Preferences
	// ProductIDs is nil until recommendations have been generated.
	ProductIDs  []int
	GeneratedAt time.Time
	UpdatedAt   time.Time
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
