package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
	"github.com/nerrad567/gray-logic-vizio/internal/session"
)

// deviceResponse is the external representation of a configured TV.
// The auth token is reported only as a presence flag.
type deviceResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Paired       bool      `json:"paired"`
	MACAddress   string    `json:"mac_address,omitempty"`
	MACAddress2  string    `json:"mac_address2,omitempty"`
	WOLBroadcast string    `json:"wol_broadcast,omitempty"`
	WOLPort      int       `json:"wol_port,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	State *stateSnapshot `json:"state,omitempty"`
}

// stateSnapshot is the live session view of a TV.
type stateSnapshot struct {
	Power      string   `json:"power"`
	Source     string   `json:"source,omitempty"`
	SourceList []string `json:"source_list,omitempty"`
	Connected  bool     `json:"connected"`
	Status     string   `json:"status"`
}

type createDeviceRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	AuthToken    string `json:"auth_token,omitempty"`
	MACAddress   string `json:"mac_address,omitempty"`
	MACAddress2  string `json:"mac_address2,omitempty"`
	WOLBroadcast string `json:"wol_broadcast,omitempty"`
	WOLPort      int    `json:"wol_port,omitempty"`

	// Connect attempts an immediate connection after creation.
	Connect bool `json:"connect,omitempty"`
}

type updateDeviceRequest struct {
	Name         *string `json:"name,omitempty"`
	Address      *string `json:"address,omitempty"`
	AuthToken    *string `json:"auth_token,omitempty"`
	MACAddress   *string `json:"mac_address,omitempty"`
	MACAddress2  *string `json:"mac_address2,omitempty"`
	WOLBroadcast *string `json:"wol_broadcast,omitempty"`
	WOLPort      *int    `json:"wol_port,omitempty"`
}

func (s *Server) toResponse(tv device.TV, includeState bool) deviceResponse {
	resp := deviceResponse{
		ID:           tv.ID,
		Name:         tv.Name,
		Address:      tv.Address,
		Paired:       tv.AuthToken != "",
		MACAddress:   tv.MACAddress,
		MACAddress2:  tv.MACAddress2,
		WOLBroadcast: tv.WOLBroadcast,
		WOLPort:      tv.WOLPort,
		CreatedAt:    tv.CreatedAt,
		UpdatedAt:    tv.UpdatedAt,
	}
	if includeState {
		if sess, err := s.sessions.Get(tv.ID); err == nil {
			resp.State = snapshot(sess)
		}
	}
	return resp
}

func snapshot(sess *session.Session) *stateSnapshot {
	power := device.PowerStateOff
	if sess.IsOn() {
		power = device.PowerStateOn
	}
	return &stateSnapshot{
		Power:      string(power),
		Source:     sess.Source(),
		SourceList: sess.SourceList(),
		Connected:  sess.IsConnected(),
		Status:     sess.Status(),
	}
}

// writeDeviceError maps registry errors onto HTTP responses.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	case errors.Is(err, device.ErrDeviceExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "device already exists")
	case errors.Is(err, device.ErrInvalidDevice):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}

// handleListDevices returns all configured devices with live state.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.All()
	out := make([]deviceResponse, 0, len(devices))
	for _, tv := range devices {
		out = append(out, s.toResponse(tv, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": out})
}

// handleCreateDevice registers a new TV and creates its session.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	tv := device.TV{
		ID:           req.ID,
		Name:         req.Name,
		Address:      req.Address,
		AuthToken:    req.AuthToken,
		MACAddress:   req.MACAddress,
		MACAddress2:  req.MACAddress2,
		WOLBroadcast: req.WOLBroadcast,
		WOLPort:      req.WOLPort,
	}

	if err := s.registry.Create(r.Context(), &tv); err != nil {
		writeDeviceError(w, err)
		return
	}

	sess, err := s.sessions.Ensure(tv)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if req.Connect {
		sess.Connect()
	}

	writeJSON(w, http.StatusCreated, s.toResponse(tv, false))
}

// handleGetDevice returns one device with live state.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	tv, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toResponse(*tv, true))
}

// handleUpdateDevice applies a partial update and refreshes the session
// configuration.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	tv, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	var req updateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != nil {
		tv.Name = *req.Name
	}
	if req.Address != nil {
		tv.Address = *req.Address
	}
	if req.AuthToken != nil {
		tv.AuthToken = *req.AuthToken
	}
	if req.MACAddress != nil {
		tv.MACAddress = *req.MACAddress
	}
	if req.MACAddress2 != nil {
		tv.MACAddress2 = *req.MACAddress2
	}
	if req.WOLBroadcast != nil {
		tv.WOLBroadcast = *req.WOLBroadcast
	}
	if req.WOLPort != nil {
		tv.WOLPort = *req.WOLPort
	}

	if err := s.registry.Update(r.Context(), tv); err != nil {
		writeDeviceError(w, err)
		return
	}
	if _, err := s.sessions.Ensure(*tv); err != nil {
		s.logger.Warn("refreshing session after update", "device_id", tv.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, s.toResponse(*tv, true))
}

// handleDeleteDevice removes a device and closes its session.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.sessions.Remove(id)
	if err := s.registry.Delete(r.Context(), id); err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// handleGetDeviceState returns the live session state for a device.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "no session for device")
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// handleGetDeviceInfo queries the TV for its hardware details. This is a
// diagnostic endpoint and requires a connected session.
func (s *Server) handleGetDeviceInfo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "no session for device")
		return
	}

	info, err := sess.DeviceInfo(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}
