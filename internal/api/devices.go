package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haandev/iskidms/internal/auth"
	"github.com/haandev/iskidms/internal/device"
)

type createDeviceForAgentRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

type transferDeviceRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

type importDevicesRequest struct {
	CSV string `json:"csv" validate:"required"`
}

// handleListOwnDevices returns the calling agent's devices.
func (s *Server) handleListOwnDevices(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	devices, err := s.devices.ListForOwner(r.Context(), principal.User.ID)
	if err != nil {
		s.logger.Error("list own devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleCreateOwnDevice creates a pending device owned by the calling agent.
// Credentials are generated server-side and returned in the response.
func (s *Server) handleCreateOwnDevice(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	d, err := s.devices.CreateForAgent(r.Context(), principal.User.ID)
	if err != nil {
		s.logger.Error("create own device failed", "error", err, "user_id", principal.User.ID)
		writeInternalError(w, "failed to create device")
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleListAllDevices returns every device with owner usernames.
func (s *Server) handleListAllDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleListPendingDevices returns devices awaiting approval.
func (s *Server) handleListPendingDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.ListPending(r.Context())
	if err != nil {
		s.logger.Error("list pending devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleCreateDeviceForAgent creates a pending device on behalf of an agent.
func (s *Server) handleCreateDeviceForAgent(w http.ResponseWriter, r *http.Request) {
	var req createDeviceForAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid device request", fields)
		return
	}

	d, err := s.devices.CreateForAgent(r.Context(), req.OwnerID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeNotFound(w, "owner not found")
		case errors.Is(err, auth.ErrNotAnAgent):
			writeValidationError(w, "owner must be an agent account", nil)
		default:
			s.logger.Error("create device failed", "error", err)
			writeInternalError(w, "failed to create device")
		}
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleApproveDevice activates a pending device. Approving an active
// device succeeds without effect.
func (s *Server) handleApproveDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.devices.Approve(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("approve device failed", "error", err, "device_id", id)
		writeInternalError(w, "failed to approve device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "approved"})
}

// handleDeleteDevice removes a device permanently.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.devices.Delete(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("delete device failed", "error", err, "device_id", id)
		writeInternalError(w, "failed to delete device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// handleTransferDevice reassigns a device to another agent.
func (s *Server) handleTransferDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req transferDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid transfer request", fields)
		return
	}

	if err := s.devices.Transfer(r.Context(), id, req.OwnerID); err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, auth.ErrUserNotFound):
			writeNotFound(w, "owner not found")
		case errors.Is(err, auth.ErrNotAnAgent):
			writeValidationError(w, "owner must be an agent account", nil)
		default:
			s.logger.Error("transfer device failed", "error", err, "device_id", id)
			writeInternalError(w, "failed to transfer device")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "transferred"})
}

// handleReleaseDevice clears a device's ownership.
func (s *Server) handleReleaseDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.devices.Release(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("release device failed", "error", err, "device_id", id)
		writeInternalError(w, "failed to release device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "released"})
}

// handleImportDevices bulk-creates active unowned devices from CSV text.
//
// Invalid lines reject the whole batch with every offending line listed.
// A storage failure mid-batch reports which usernames did get in.
func (s *Server) handleImportDevices(w http.ResponseWriter, r *http.Request) {
	var req importDevicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if fields := validateStruct(req); fields != nil {
		writeValidationError(w, "invalid import request", fields)
		return
	}

	res, err := s.devices.Import(r.Context(), req.CSV)
	if err != nil {
		var verr *device.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, "import rejected", verr.Lines)
		case errors.Is(err, device.ErrPartialImport):
			writeJSON(w, http.StatusInternalServerError, Error{
				Status:  http.StatusInternalServerError,
				Code:    ErrCodeInternal,
				Message: "import partially failed; listed devices were created",
				Details: res,
			})
		default:
			s.logger.Error("import devices failed", "error", err)
			writeInternalError(w, "failed to import devices")
		}
		return
	}

	writeJSON(w, http.StatusCreated, res)
}
