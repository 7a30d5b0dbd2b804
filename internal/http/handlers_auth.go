package http

import (
	"net/http"
	"strings"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email and password are required")
		return
	}

	session, err := s.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID: session.UserID,
		Email:  session.Email,
		Token:  session.Token,
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	session, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID: session.UserID,
		Email:  session.Email,
		Token:  session.Token,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if err := s.auth.SignOut(r.Context(), token); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"signed_out": true})
}

func (s *Server) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	// The reset token travels out of band. The response is the same
	// whether or not the account exists.
	if _, err := s.auth.RequestPasswordReset(r.Context(), strings.TrimSpace(strings.ToLower(req.Email))); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"requested": true})
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"reset_token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	if req.ResetToken == "" || req.NewPassword == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "reset_token and new_password are required")
		return
	}

	if err := s.auth.ConfirmPasswordReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}
