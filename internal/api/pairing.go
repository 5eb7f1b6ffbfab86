package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-vizio/internal/session"
	"github.com/nerrad567/gray-logic-vizio/internal/smartcast"
)

// PIN pairing is a three-step flow. Start makes the TV display a PIN and
// returns a challenge; submit exchanges the PIN for an auth token. The
// challenge is held in memory between the two calls, so a restart of the
// bridge requires starting over.

type pairSubmitRequest struct {
	PIN string `json:"pin"`
}

// handlePairStart begins pairing and makes the TV display a PIN.
func (s *Server) handlePairStart(w http.ResponseWriter, r *http.Request) {
	tv, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	challenge, err := s.pairing(*tv).StartPairing(r.Context(), tv.ID, tv.Name)
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeInternal, err.Error())
		return
	}

	s.challengesMu.Lock()
	s.challenges[tv.ID] = challenge
	s.challengesMu.Unlock()

	s.logger.Info("pairing started", "device_id", tv.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"challenge_type": challenge.ChallengeType,
		"message":        "enter the PIN shown on the TV",
	})
}

// handlePairSubmit exchanges the on-screen PIN for an auth token and
// stores it on the device. On success the session reconnects with the
// new token.
func (s *Server) handlePairSubmit(w http.ResponseWriter, r *http.Request) {
	tv, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	var req pairSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PIN == "" {
		writeBadRequest(w, "pin is required")
		return
	}

	s.challengesMu.Lock()
	challenge := s.challenges[tv.ID]
	s.challengesMu.Unlock()
	if challenge == nil {
		writeBadRequest(w, "no pairing in progress; call pair/start first")
		return
	}

	token, err := s.pairing(*tv).SubmitPIN(r.Context(), tv.ID, challenge, req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, smartcast.ErrChallengeIncorrect):
			// Challenge stays valid; the caller can retry with another PIN.
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "incorrect PIN")
		case errors.Is(err, smartcast.ErrPairingDenied):
			s.dropChallenge(tv.ID)
			writeError(w, http.StatusForbidden, ErrCodeUnauthorized, "pairing denied by TV")
		default:
			writeError(w, http.StatusBadGateway, ErrCodeInternal, err.Error())
		}
		return
	}
	s.dropChallenge(tv.ID)

	if err := s.registry.SetAuthToken(r.Context(), tv.ID, token); err != nil {
		writeDeviceError(w, err)
		return
	}

	tv.AuthToken = token
	if sess, err := s.sessions.Ensure(*tv); err == nil {
		sess.Connect()
	}
	s.bus.Emit(session.Event{Kind: session.KindPaired, DeviceID: tv.ID})

	s.logger.Info("pairing complete", "device_id", tv.ID)
	writeJSON(w, http.StatusOK, map[string]any{"paired": true})
}

// handlePairCancel aborts an in-flight pairing attempt.
func (s *Server) handlePairCancel(w http.ResponseWriter, r *http.Request) {
	tv, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	s.dropChallenge(tv.ID)
	if err := s.pairing(*tv).CancelPairing(r.Context(), tv.ID); err != nil {
		s.logger.Warn("cancelling pairing", "device_id", tv.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

func (s *Server) dropChallenge(deviceID string) {
	s.challengesMu.Lock()
	delete(s.challenges, deviceID)
	s.challengesMu.Unlock()
}
