package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/pcrs-client/auth"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/rs/zerolog/log"
)

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenHandler exchanges username and password for an access/refresh pair.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		if err := decodeBody(r, &creds); err != nil {
			writeError(w, err)
			return
		}

		account, err := s.repos.Accounts.GetByUsername(creds.Username)
		if err != nil || account.Blocked || !account.CheckPassword(creds.Password) {
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}

		pair, err := s.issuer.IssuePair(subjectOf(account))
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("username", account.Username).Str("role", account.Role.String()).Msg("token issued")
		writeJSON(w, http.StatusOK, pair)
	}
}

// RefreshHandler rotates a refresh token into a new pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		claims, err := s.issuer.Verify(req.Refresh, token.TypeRefresh)
		if err == nil {
			_, err = s.accountFor(claims)
		}
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}

		pair, err := s.issuer.Refresh(req.Refresh)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Token is invalid or expired",
				"code":   "token_not_valid",
			})
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// RegisterHandler creates a storefront (role user) account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg users.Registration
		if err := decodeBody(r, &reg); err != nil {
			writeError(w, err)
			return
		}
		account, err := s.createAccount(users.Profile{
			Username:  reg.Username,
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Role:      users.RoleUser,
		}, reg.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, account.Profile)
	}
}

func (s *Server) ProfileGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, accountFromContext(r.Context()).Profile)
	}
}

func (s *Server) ProfilePutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update users.ProfileUpdate
		if err := decodeBody(r, &update); err != nil {
			writeError(w, err)
			return
		}
		account := *accountFromContext(r.Context())
		account.Apply(update)
		if err := s.repos.Accounts.Upsert(&account); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account.Profile)
	}
}

// createAccount validates the password and username and stores a new account.
func (s *Server) createAccount(profile users.Profile, password string) (*users.Account, error) {
	fields := errors.FieldErrors{}
	if err := users.ValidatePasswordStrength(password); err != nil {
		fields["password"] = err.Error()
	}
	if _, err := s.repos.Accounts.GetByUsername(profile.Username); err == nil {
		fields["username"] = "A user with that username already exists."
	}
	if len(fields) > 0 {
		return nil, &errors.ValidationError{Fields: fields}
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.nowFunc()
	profile.ID = 0
	profile.DateJoined = &now
	account := &users.Account{Profile: profile, PasswordHash: hash}
	if err := s.repos.Accounts.Upsert(account); err != nil {
		return nil, &errors.ValidationError{Fields: errors.FieldErrors{"username": err.Error()}}
	}
	return account, nil
}

func (s *Server) accountFor(claims token.Claims) (*users.Account, error) {
	id, err := strconv.Atoi(claims.UserID)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	account, err := s.repos.Accounts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account.Blocked {
		return nil, errors.ErrForbidden
	}
	return account, nil
}

func subjectOf(account *users.Account) token.Subject {
	return token.Subject{
		UserID:   strconv.Itoa(account.ID),
		Username: account.Username,
		Role:     account.Role.String(),
	}
}
