package server

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyAccount stores the authenticated account
	ContextKeyAccount ContextKey = "account"
	// ContextKeyClaims stores parsed token claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth validates the Bearer access token and, when roles are given,
// that the account has one of them. The account is put in the context.
func (s *Server) RequireAuth(roles ...users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeDetail(w, http.StatusUnauthorized, "Authorization header must contain two space-delimited values")
				return
			}

			claims, err := s.issuer.Verify(parts[1], token.TypeAccess)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"detail": "Given token not valid for any token type",
					"code":   "token_not_valid",
				})
				return
			}

			id, err := strconv.Atoi(claims.UserID)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Token contained no recognizable user identification")
				return
			}
			account, err := s.repos.Accounts.GetByID(id)
			if err != nil || account.Blocked {
				writeDetail(w, http.StatusUnauthorized, "User not found")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, account.Role) {
				writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAccount, account)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// accountFromContext returns the account RequireAuth stored.
func accountFromContext(ctx context.Context) *users.Account {
	account, _ := ctx.Value(ContextKeyAccount).(*users.Account)
	return account
}
