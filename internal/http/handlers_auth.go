package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *core.User `json:"user"`
	Token string     `json:"token"`
}

// handleRegister creates an account. The response carries the public user
// fields only; the password hash never leaves the process.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "user registered",
		log.FieldUserID, user.ID,
		log.FieldUsername, user.Username)

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin checks credentials and issues a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.issueToken(w, r, user)
}

// handleLoginByID issues a token for a known user id without a credential
// check. It mirrors the id-based session endpoint of the first API
// generation and is kept for clients that still use it.
func (s *Server) handleLoginByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, core.ErrUserNotFound)
		return
	}

	s.issueToken(w, r, user)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, user *core.User) {
	token, err := s.jwt.Generate(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "session issued", log.FieldUserID, user.ID)
	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}
