package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-vizio/internal/session"
)

// Command handlers are fire-and-forget: the session performs the work
// asynchronously and the outcome is observable on the state endpoint and
// the WebSocket stream. A 202 response means the command was dispatched.

type powerRequest struct {
	// Power selects an explicit target state. Absent means toggle.
	Power *bool `json:"power,omitempty"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type sourceRequest struct {
	Source string `json:"source"`
}

type disconnectRequest struct {
	StopPolling bool `json:"stop_polling,omitempty"`
}

func (s *Server) deviceSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "no session for device")
		return nil
	}
	return sess
}

func writeAccepted(w http.ResponseWriter, command string) {
	writeJSON(w, http.StatusAccepted, map[string]any{"dispatched": command})
}

// handleConnect starts the connection lifecycle for a device.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	sess := s.deviceSession(w, r)
	if sess == nil {
		return
	}
	sess.Connect()
	writeAccepted(w, "connect")
}

// handleDisconnect tears down the connection. Polling continues unless
// stop_polling is set, so the TV will reconnect when reachable again.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	sess := s.deviceSession(w, r)
	if sess == nil {
		return
	}

	var req disconnectRequest
	if r.Body != nil {
		//nolint:errcheck // Empty body means default behaviour
		json.NewDecoder(r.Body).Decode(&req)
	}

	sess.Disconnect(!req.StopPolling)
	writeAccepted(w, "disconnect")
}

// handlePower toggles or explicitly sets the power state.
func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	sess := s.deviceSession(w, r)
	if sess == nil {
		return
	}

	var req powerRequest
	if r.Body != nil {
		//nolint:errcheck // Empty body means toggle
		json.NewDecoder(r.Body).Decode(&req)
	}

	sess.TogglePower(r.Context(), req.Power)
	writeAccepted(w, "power")
}

// handleSendKey sends a remote key press.
func (s *Server) handleSendKey(w http.ResponseWriter, r *http.Request) {
	sess := s.deviceSession(w, r)
	if sess == nil {
		return
	}

	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeBadRequest(w, "key is required")
		return
	}

	sess.SendKey(r.Context(), req.Key)
	writeAccepted(w, "key")
}

// handleLaunchSource switches to an HDMI input or launches an app.
func (s *Server) handleLaunchSource(w http.ResponseWriter, r *http.Request) {
	sess := s.deviceSession(w, r)
	if sess == nil {
		return
	}

	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Source == "" {
		writeBadRequest(w, "source is required")
		return
	}

	sess.LaunchSource(r.Context(), req.Source)
	writeAccepted(w, "source")
}
