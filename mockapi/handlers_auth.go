package mockapi

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/secops-console/auth"
	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errCredentialsRequired = errors.New("Username and password required")

const msgInvalidCredentials = "Invalid credentials"

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy"}, http.StatusOK)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, errCredentialsRequired.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validate.ValidateCredentials(req.Username, req.Password); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			log.Err(err).Msg("RegisterHandler: failed to hash password")
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		account := &users.Account{
			Username:     req.Username,
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: hash,
			Role:         users.RoleAnalyst,
			CreatedAt:    s.nowTime().UTC(),
		}
		if err := s.accounts.Create(account); err != nil {
			if errors.Is(err, users.ErrAccountExists) {
				writeError(w, "Username already exists", http.StatusConflict)
				return
			}
			log.Err(err).Str("username", req.Username).Msg("RegisterHandler: failed to create account")
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, auth.RegisterResponse{
			Message:  "User registered successfully",
			UserID:   account.ID,
			Username: account.Username,
		}, http.StatusCreated)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, errCredentialsRequired.Error(), http.StatusBadRequest)
			return
		}
		if err := s.validate.ValidateCredentials(req.Username, req.Password); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		account, err := s.accounts.GetByUsername(req.Username)
		if err != nil || !users.CheckPasswordHash(req.Password, account.PasswordHash) {
			writeError(w, msgInvalidCredentials, http.StatusUnauthorized)
			return
		}

		profile := account.Profile()
		token, err := s.tokens.Issue(profile)
		if err != nil {
			log.Err(err).Msg("LoginHandler: failed to issue token")
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, auth.LoginResponse{
			Message: "Login successful",
			Token:   token,
			User:    profile,
		}, http.StatusOK)
	}
}

func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeJSON(w, auth.VerifyResponse{Valid: false}, http.StatusUnauthorized)
			return
		}

		claims, err := s.tokens.Parse(token)
		switch {
		case errors.Is(err, ErrTokenExpired):
			writeJSON(w, auth.VerifyResponse{Valid: false, Error: "Token expired"}, http.StatusUnauthorized)
			return
		case err != nil:
			writeJSON(w, auth.VerifyResponse{Valid: false, Error: "Invalid token"}, http.StatusUnauthorized)
			return
		}

		profile := claims.Profile()
		writeJSON(w, auth.VerifyResponse{Valid: true, User: &profile}, http.StatusOK)
	}
}
