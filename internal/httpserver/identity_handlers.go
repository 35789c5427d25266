package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskManagement/internal/auth"
	"taskManagement/repository"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, "hash password", err)
		return
	}

	if _, err := s.Users.Create(r.Context(), req.Username, hash); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			writeMessage(w, http.StatusBadRequest, "Username already exists")
			return
		}
		writeInternalError(w, "create user", err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// handleLogin verifies credentials and issues a session token.
// Unknown username and wrong password are indistinguishable to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	u, err := s.Users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		writeInternalError(w, "get user", err)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := auth.IssueToken(s.Cfg.Auth.JWTSecret, u.ID, s.Cfg.Auth.TokenTTL)
	if err != nil {
		writeInternalError(w, "issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// handleLogout acknowledges logout. Tokens are stateless, so the server holds
// no revocation state and the token stays valid until its natural expiry.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "Successfully logged out")
}
