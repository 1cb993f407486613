package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lampnet/lampnet-core/internal/audit"
	"github.com/lampnet/lampnet-core/internal/auth"
)

// loginRequest is the request body for POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /api/auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleLogin authenticates an operator and returns a JWT access token.
//
// Unknown usernames and wrong passwords are indistinguishable to the
// caller. Successful logins are recorded in the activity trail.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login user lookup failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "username", req.Username, "error", err)
		writeInternalError(w, "login failed")
		return
	}
	if !ok {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	if !user.IsActive {
		writeUnauthorized(w, "account is inactive")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	token, err := auth.GenerateAccessToken(user, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("token generation failed", "username", req.Username, "error", err)
		writeInternalError(w, "login failed")
		return
	}
	if ttl <= 0 {
		ttl = 15 //nolint:mnd // mirror GenerateAccessToken's default TTL in expires_in
	}

	entry := &audit.ActivityLog{
		ActorID:  user.ID,
		Action:   audit.ActionLogin,
		SourceIP: clientIP(r),
		Details:  map[string]any{"username": user.Username},
	}
	if err := s.audit.Create(r.Context(), entry); err != nil {
		s.logger.Error("login activity log failed", "username", req.Username, "error", err)
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60, // seconds
	})
}
