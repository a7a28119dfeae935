package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/haandev/iskidms/internal/auth"
)

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=64"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Company         string `json:"company" validate:"omitempty,max=200"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"omitempty,max=50"`
	ContactPerson   string `json:"contact_person" validate:"omitempty,max=200"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=NewPassword"`
}

// handleRegister creates a new agent account. Registration does not log the
// caller in; they authenticate through /auth/login afterwards.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid registration request", fields)
		return
	}
	if !auth.IsValidUsername(req.Username) {
		writeValidationError(w, "invalid registration request", []FieldError{
			{Field: "username", Reason: "must be 3-64 characters: letters, digits, dots, hyphens, underscores"},
		})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	user := &auth.User{
		Username:      req.Username,
		PasswordHash:  hash,
		Role:          auth.RoleAgent,
		Company:       req.Company,
		Email:         req.Email,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			writeConflict(w, "username already exists")
			return
		}
		s.logger.Error("register failed", "error", err)
		writeInternalError(w, "failed to register")
		return
	}

	s.logger.Info("agent registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin authenticates a user and establishes a session.
//
// Unknown usernames and wrong passwords produce the same response so the
// endpoint cannot be used to enumerate accounts.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid login request", fields)
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			s.logger.Error("login lookup failed", "error", err)
			writeInternalError(w, "failed to log in")
			return
		}
		writeUnauthenticated(w, auth.ErrInvalidCredentials.Error())
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeUnauthenticated(w, auth.ErrInvalidCredentials.Error())
		return
	}

	session, err := s.sessions.Create(r.Context(), user.ID, s.cfg.SessionTTL())
	if err != nil {
		s.logger.Error("session create failed", "error", err)
		writeInternalError(w, "failed to log in")
		return
	}

	s.setSessionCookie(w, session)
	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)

	// The role is echoed so the UI can route to the right dashboard.
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"role":       user.Role,
		"expires_at": session.ExpiresAt,
	})
}

// handleLogout destroys the caller's session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	if err := s.sessions.Destroy(r.Context(), principal.Session.ID); err != nil {
		s.logger.Error("logout failed", "error", err)
		writeInternalError(w, "failed to log out")
		return
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged out"})
}

// handleMe returns the authenticated caller's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"user":               principal.User,
		"session_expires_at": principal.Session.ExpiresAt,
	})
}

// handleChangePassword lets any authenticated user change their own
// password. The current password must be supplied; the calling session
// stays valid.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid password change request", fields)
		return
	}

	if !auth.CheckPassword(principal.User.PasswordHash, req.CurrentPassword) {
		writeValidationError(w, "invalid password change request", []FieldError{
			{Field: "current_password", Reason: "is incorrect"},
		})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to change password")
		return
	}

	if err := s.users.UpdatePassword(r.Context(), principal.User.ID, hash); err != nil {
		s.logger.Error("password update failed", "error", err)
		writeInternalError(w, "failed to change password")
		return
	}

	s.logger.Info("password changed", "user_id", principal.User.ID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "password changed"})
}

// setSessionCookie attaches the session cookie to the response.
// The session ID is the bearer token; the cookie is never script-readable.
func (s *Server) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie instructs the client to drop the session cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
