package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haandev/iskidms/internal/auth"
)

type createAgentRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=64"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Company         string `json:"company" validate:"omitempty,max=200"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"omitempty,max=50"`
	ContactPerson   string `json:"contact_person" validate:"omitempty,max=200"`
}

type setAgentPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=NewPassword"`
}

// handleListAgents returns all agent accounts with device counts.
func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.users.ListAgents(r.Context())
	if err != nil {
		s.logger.Error("list agents failed", "error", err)
		writeInternalError(w, "failed to list agents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agents": agents,
		"count":  len(agents),
	})
}

// handleCreateAgent creates an agent account on behalf of an admin.
// Validation matches self-registration.
func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid agent request", fields)
		return
	}
	if !auth.IsValidUsername(req.Username) {
		writeValidationError(w, "invalid agent request", []FieldError{
			{Field: "username", Reason: "must be 3-64 characters: letters, digits, dots, hyphens, underscores"},
		})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to create agent")
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
		s.logger.Error("create agent failed", "error", err)
		writeInternalError(w, "failed to create agent")
		return
	}

	s.logger.Info("agent created", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// handleGetAgent returns one agent's extended profile.
func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "agent not found")
			return
		}
		s.logger.Error("get agent failed", "error", err, "user_id", id)
		writeInternalError(w, "failed to load agent")
		return
	}
	if user.Role != auth.RoleAgent {
		writeNotFound(w, "agent not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteAgent removes an account. The caller cannot delete the
// account bound to their own session; deleting any other account cascades
// its sessions and releases its devices.
func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if id == principal.User.ID {
		writeForbidden(w, auth.ErrSelfDeletion.Error())
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "agent not found")
			return
		}
		s.logger.Error("delete agent failed", "error", err, "user_id", id)
		writeInternalError(w, "failed to delete agent")
		return
	}

	s.logger.Info("account deleted", "user_id", id, "deleted_by", principal.User.ID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// handleChangeAgentPassword force-sets an agent's password without the
// current one, then destroys all of the agent's sessions so stolen or
// stale logins die with the old password.
func (s *Server) handleChangeAgentPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setAgentPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid password request", fields)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to change password")
		return
	}

	if err := s.users.UpdatePassword(r.Context(), id, hash); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "agent not found")
			return
		}
		s.logger.Error("force password change failed", "error", err, "user_id", id)
		writeInternalError(w, "failed to change password")
		return
	}

	if err := s.sessions.DestroyAllForUser(r.Context(), id); err != nil {
		s.logger.Error("session invalidation failed", "error", err, "user_id", id)
		writeInternalError(w, "password changed but session invalidation failed")
		return
	}

	s.logger.Info("agent password reset", "user_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "password changed"})
}
