// Package guard decides whether the stored session may reach a protected
// page or command.
package guard

import (
	"context"
	"slices"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/rs/zerolog/log"
)

type State int

const (
	Unknown State = iota
	Authorized
	Unauthorized
	Forbidden
)

// Redirect locations.
const (
	SignInPath    = "/signin"
	ForbiddenPath = "/403"
)

func (s State) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Redirect is where a caller in this state is sent. Authorized and Unknown
// stay where they are.
func (s State) Redirect() string {
	switch s {
	case Unauthorized:
		return SignInPath
	case Forbidden:
		return ForbiddenPath
	}
	return ""
}

// Refresher exchanges the stored refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context) (token.Claims, error)
}

type Guard struct {
	sessions  *sessions.Manager
	refresher Refresher
	allowed   []users.Role
}

// New returns a guard admitting the given roles. No roles admits any
// authenticated user.
func New(sm *sessions.Manager, refresher Refresher, allowed ...users.Role) *Guard {
	return &Guard{sessions: sm, refresher: refresher, allowed: allowed}
}

// Check decodes the stored access token. An expired token gets exactly one
// refresh attempt; no token or a failed refresh is Unauthorized, a role
// outside the allowed list is Forbidden.
func (g *Guard) Check(ctx context.Context) State {
	claims, err := g.sessions.Claims()
	if err != nil {
		log.Debug().Err(err).Msg("guard: no usable access token")
		return Unauthorized
	}

	if claims.Expired(g.sessions.Now()) {
		if g.refresher == nil {
			return Unauthorized
		}
		claims, err = g.refresher.Refresh(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("guard: refresh failed")
			return Unauthorized
		}
		if claims.Expired(g.sessions.Now()) {
			return Unauthorized
		}
	}

	role := claims.Role
	if role == "" {
		role = g.sessions.Role()
	}
	if len(g.allowed) > 0 && !slices.Contains(g.allowed, users.Role(role)) {
		return Forbidden
	}
	return Authorized
}

// Require is Check as an error: ErrUnauthorized or ErrForbidden.
func (g *Guard) Require(ctx context.Context) error {
	switch g.Check(ctx) {
	case Authorized:
		return nil
	case Forbidden:
		return errors.ErrForbidden
	}
	return errors.ErrUnauthorized
}
