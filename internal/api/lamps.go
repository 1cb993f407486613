package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lampnet/lampnet-core/internal/lamp"
)

// controlRequest is the request body for POST /api/lamp/control.
// Field names match the wire format shared with the gateway firmware.
type controlRequest struct {
	GatewayID string           `json:"gw_id"`
	NodeID    string           `json:"node_id"`
	State     *lamp.PowerState `json:"lamp_state,omitempty"`
	DimLevel  *int             `json:"lamp_dim,omitempty"`
	Lux       *float64         `json:"lux,omitempty"`
	CurrentA  *float64         `json:"current_a,omitempty"`
}

// deleteRequest is the request body for DELETE /api/lamp/delete.
type deleteRequest struct {
	GatewayID string `json:"gw_id"`
	NodeID    string `json:"node_id"`
}

// handleLampState returns every known lamp.
func (s *Server) handleLampState(w http.ResponseWriter, r *http.Request) {
	records, err := s.lamps.ReadAll(r.Context())
	if err != nil {
		s.logger.Error("listing lamps failed", "error", err)
		writeInternalError(w, "failed to read lamp state")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleLampControl registers or updates a lamp and pushes the new
// state to the device.
func (s *Server) handleLampControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.lamps.Control(r.Context(), actorFromRequest(r), lamp.ControlRequest{
		GatewayID: req.GatewayID,
		NodeID:    req.NodeID,
		Patch: lamp.Patch{
			State:    req.State,
			DimLevel: req.DimLevel,
			Lux:      req.Lux,
			CurrentA: req.CurrentA,
		},
	})
	if err != nil {
		s.writeLampError(w, err, "lamp control failed")
		return
	}

	// Always 200, even on first registration: the deployed dashboards
	// treat any non-200 from /control as a failure. The created flag in
	// the body carries the distinction.
	writeJSON(w, http.StatusOK, result)
}

// handleLampDelete removes a lamp and commands it off.
func (s *Server) handleLampDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.GatewayID == "" || req.NodeID == "" {
		writeBadRequest(w, "gw_id and node_id are required")
		return
	}

	rec, err := s.lamps.Delete(r.Context(), actorFromRequest(r), req.GatewayID, req.NodeID)
	if err != nil {
		s.writeLampError(w, err, "lamp delete failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "lamp deleted",
		"lamp":    rec,
	})
}

// writeLampError maps lamp domain errors onto HTTP responses.
func (s *Server) writeLampError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, lamp.ErrLampNotFound):
		writeNotFound(w, "lamp not found")
	case errors.Is(err, lamp.ErrInvalidNode):
		writeBadRequest(w, "gw_id and node_id are required")
	case errors.Is(err, lamp.ErrInvalidState):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "lamp_state must be ON or OFF")
	case errors.Is(err, lamp.ErrInvalidDimLevel):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "lamp_dim must be between 0 and 100")
	default:
		s.logger.Error(logMsg, "error", err)
		writeInternalError(w, "operation failed")
	}
}
